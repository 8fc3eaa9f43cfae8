package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"multichat-be/internal/constant"
	"multichat-be/internal/dto"
	"multichat-be/internal/entity"
	"multichat-be/internal/model"
	"multichat-be/internal/pkg/logger"
	"multichat-be/internal/repository/memory"
	"multichat-be/internal/repository/specification"
	"multichat-be/internal/repository/unitofwork"
	"multichat-be/pkg/events"
	"multichat-be/pkg/llm"

	"github.com/google/uuid"
)

// ErrGenerationInFlight is returned when a send arrives while a response
// is still being generated for the same conversation. At most one
// generation may run per conversation at a time.
var ErrGenerationInFlight = errors.New("a response is already being generated for this conversation")

// EventPublisher pushes domain events to the cross-instance bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID) (*dto.CreateConversationResponse, error)
	GetAllConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	StopGeneration(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.StopGenerationResponse, error)
	RenameConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RenameConversationRequest) error
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
	DeleteMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) error
	ClearAllConversations(ctx context.Context, userId uuid.UUID) error
	BootstrapUser(ctx context.Context, userId uuid.UUID) error
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	generator         llm.Generator
	generationRepo    *memory.GenerationRepository
	streamPublisher   IPublisherService
	eventPublisher    EventPublisher
	logger            logger.ILogger
	generationTimeout time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	generator llm.Generator,
	generationRepo *memory.GenerationRepository,
	streamPublisher IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
	generationTimeout time.Duration,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		generator:         generator,
		generationRepo:    generationRepo,
		streamPublisher:   streamPublisher,
		eventPublisher:    eventPublisher,
		logger:            log,
		generationTimeout: generationTimeout,
	}
}

// CreateConversation creates an empty conversation with the placeholder
// title. The first message rewrites the title.
func (cs *chatService) CreateConversation(ctx context.Context, userId uuid.UUID) (*dto.CreateConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	conversation := entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.UntitledConversation,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationCreated, userId.String(), conversation.Id.String()))

	return &dto.CreateConversationResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}, nil
}

// GetAllConversations lists the caller's conversations, most recently
// active first.
func (cs *chatService) GetAllConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllConversationsResponse, 0, len(conversations))
	for _, c := range conversations {
		response = append(response, &dto.GetAllConversationsResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	return response, nil
}

// GetMessages returns a conversation's messages oldest-first.
func (cs *chatService) GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found or access denied")
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "timestamp", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, messageToDTO(m))
	}

	return response, nil
}

// SendMessage persists the user turn, streams the model reply into an
// initially empty bot message, and returns both once the stream ends.
func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	content := strings.TrimSpace(request.Content)
	if content == "" {
		return nil, fmt.Errorf("message content must not be blank")
	}

	descriptor, ok := llm.Lookup(request.ModelId)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", request.ModelId)
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: request.ConversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found or access denied")
	}

	if !cs.generationRepo.TryStart(conversation.Id) {
		return nil, ErrGenerationInFlight
	}
	defer cs.generationRepo.Finish(conversation.Id)

	existingCount, err := uow.MessageRepository().Count(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        content,
		Sender:         constant.MessageSenderUser,
		Timestamp:      now,
		CreatedAt:      now,
	}

	modelName := descriptor.DisplayName
	botMessage := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        "",
		Sender:         constant.MessageSenderBot,
		Timestamp:      now.Add(1 * time.Millisecond),
		Model:          &modelName,
		CreatedAt:      now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	// The first user message rewrites the placeholder title.
	titleDerived := existingCount == 0
	if titleDerived {
		conversation.Title = DeriveTitle(content)
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return nil, err
		}
	} else {
		if err := uow.ConversationRepository().Touch(ctx, conversation.Id); err != nil {
			return nil, err
		}
	}

	if err := uow.MessageRepository().Create(ctx, &botMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if titleDerived {
		cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationRenamed, userId.String(), conversation.Id.String()))
	}

	history, err := cs.loadHistory(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}

	reply := cs.generate(userId, conversation.Id, botMessage.Id, history, descriptor)
	botMessage.Content = reply

	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeGenerationCompleted, userId.String(), conversation.Id.String()))

	return &dto.SendMessageResponse{
		ConversationId:    conversation.Id,
		ConversationTitle: conversation.Title,
		Sent:              messageToDTO(&userMessage),
		Reply:             messageToDTO(&botMessage),
	}, nil
}

// generate runs the model stream and patches the placeholder message as
// chunks arrive. It returns the final content written to the message.
// The generation is bounded by the configured timeout and can be cut
// short via StopGeneration; both leave the accumulated text in place.
func (cs *chatService) generate(
	userId uuid.UUID,
	conversationId uuid.UUID,
	botMessageId uuid.UUID,
	history []llm.Message,
	descriptor llm.ModelDescriptor,
) string {
	// Detached from the request so a client disconnect does not kill the
	// stream mid-write; the timeout is the only ceiling.
	genCtx, cancel := context.WithTimeout(context.Background(), cs.generationTimeout)
	defer cancel()
	cs.generationRepo.StoreCancel(conversationId, cancel)

	patchUow := cs.uowFactory.NewUnitOfWork(genCtx)

	var accumulated strings.Builder
	onChunk := func(chunk string) {
		accumulated.WriteString(chunk)
		if err := patchUow.MessageRepository().UpdateContent(genCtx, botMessageId, accumulated.String()); err != nil {
			cs.logger.Warn("ChatService", "Failed to patch streaming content", map[string]interface{}{
				"message_id": botMessageId,
				"error":      err.Error(),
			})
		}
		cs.publishStreamEvent(userId, model.StreamEvent{
			Type:           model.StreamEventChunk,
			ConversationId: conversationId,
			MessageId:      botMessageId,
			Chunk:          chunk,
		})
	}

	_, err := cs.generator.Generate(genCtx, history, descriptor, onChunk)

	finalContent := accumulated.String()
	switch {
	case err == nil:
		// Final accumulated content is already in place.
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Stopped or timed out: keep whatever was streamed so far.
		cs.logger.Info("ChatService", "Generation cut short", map[string]interface{}{
			"conversation_id": conversationId,
			"reason":          err.Error(),
		})
	default:
		cs.logger.Error("ChatService", "Generation failed", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
		finalContent = fmt.Sprintf(constant.GenerationFailedTemplate, err)
		if patchErr := patchUow.MessageRepository().UpdateContent(context.Background(), botMessageId, finalContent); patchErr != nil {
			cs.logger.Error("ChatService", "Failed to write error content", map[string]interface{}{
				"message_id": botMessageId,
				"error":      patchErr.Error(),
			})
		}
		cs.publishStreamEvent(userId, model.StreamEvent{
			Type:           model.StreamEventError,
			ConversationId: conversationId,
			MessageId:      botMessageId,
			Error:          err.Error(),
		})
	}

	cs.publishStreamEvent(userId, model.StreamEvent{
		Type:           model.StreamEventDone,
		ConversationId: conversationId,
		MessageId:      botMessageId,
		Content:        finalContent,
		Done:           true,
	})

	return finalContent
}

// StopGeneration cancels a running generation. The placeholder keeps the
// content streamed so far.
func (cs *chatService) StopGeneration(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.StopGenerationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found or access denied")
	}

	stopped := cs.generationRepo.Cancel(conversationId)
	return &dto.StopGenerationResponse{
		ConversationId: conversationId,
		Stopped:        stopped,
	}, nil
}

// RenameConversation sets a user-chosen title, replacing the derived one.
func (cs *chatService) RenameConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RenameConversationRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation not found or access denied")
	}

	conversation.Title = strings.TrimSpace(request.Title)
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return err
	}

	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationRenamed, userId.String(), conversationId.String()))
	return nil
}

// DeleteConversation removes the conversation and all of its messages.
func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationDeleted, userId.String(), conversationId.String()))
	return nil
}

// DeleteMessage removes a single message after checking the caller owns
// the conversation it belongs to.
func (cs *chatService) DeleteMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	message, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return err
	}
	if message == nil {
		return fmt.Errorf("message not found")
	}

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: message.ConversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("message not found")
	}

	return uow.MessageRepository().Delete(ctx, messageId)
}

// ClearAllConversations deletes every conversation the caller owns,
// messages included.
func (cs *chatService) ClearAllConversations(ctx context.Context, userId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, c := range conversations {
		if err := uow.MessageRepository().DeleteByConversationId(ctx, c.Id); err != nil {
			return err
		}
		if err := uow.ConversationRepository().Delete(ctx, c.Id); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.publishEvent(ctx, events.NewUserEvent(events.TypeConversationsPurged, userId.String()))
	return nil
}

// BootstrapUser seeds a fresh account with the welcome conversation so
// the first screen is never empty.
func (cs *chatService) BootstrapUser(ctx context.Context, userId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	count, err := uow.ConversationRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	conversation := entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.WelcomeConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// The guide thread is seeded older so the welcome one lists first.
	guideTime := now.Add(-24 * time.Hour)
	guide := entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.GuideConversationTitle,
		CreatedAt: guideTime,
		UpdatedAt: guideTime,
	}

	welcomeModel := constant.WelcomeBotModel
	userMessage := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        constant.WelcomeUserMessage,
		Sender:         constant.MessageSenderUser,
		Timestamp:      now,
		CreatedAt:      now,
	}
	botMessage := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Content:        constant.WelcomeBotMessage,
		Sender:         constant.MessageSenderBot,
		Timestamp:      now.Add(1 * time.Second),
		Model:          &welcomeModel,
		CreatedAt:      now,
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Create(ctx, &guide); err != nil {
		return err
	}
	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return err
	}
	if err := uow.MessageRepository().Create(ctx, &botMessage); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationCreated, userId.String(), conversation.Id.String()))
	cs.publishEvent(ctx, events.NewConversationEvent(events.TypeConversationCreated, userId.String(), guide.Id.String()))
	return nil
}

// loadHistory fetches the conversation's ordered turns in gateway form.
func (cs *chatService) loadHistory(ctx context.Context, conversationId uuid.UUID) ([]llm.Message, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "timestamp", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		// The empty placeholder carries no signal for the model.
		if m.Content == "" {
			continue
		}
		history = append(history, llm.Message{
			Role:    m.Sender,
			Content: m.Content,
		})
	}
	return history, nil
}

func (cs *chatService) publishStreamEvent(userId uuid.UUID, event model.StreamEvent) {
	if cs.streamPublisher == nil {
		return
	}
	payload, err := json.Marshal(dto.StreamEnvelope{UserId: userId, Event: event})
	if err != nil {
		return
	}
	if err := cs.streamPublisher.Publish(context.Background(), payload); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish stream event", map[string]interface{}{"error": err.Error()})
	}
}

// publishEvent pushes a domain event; failures are logged, never fatal,
// because live sync is auxiliary to the request.
func (cs *chatService) publishEvent(ctx context.Context, event events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("ChatService", fmt.Sprintf("Failed to publish %s event", event.EventType()), map[string]interface{}{"error": err.Error()})
	}
}

func messageToDTO(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Content:        m.Content,
		Sender:         m.Sender,
		Timestamp:      m.Timestamp,
		Model:          m.Model,
		Tokens:         m.Tokens,
	}
}
