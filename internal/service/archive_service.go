package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"multichat-be/internal/constant"
	"multichat-be/internal/dto"
	"multichat-be/internal/entity"
	"multichat-be/internal/pkg/logger"
	"multichat-be/internal/repository/specification"
	"multichat-be/internal/repository/unitofwork"
	"multichat-be/pkg/events"

	"github.com/google/uuid"
)

const batchSkipReason = "not found or unauthorized"

type IArchiveService interface {
	Export(ctx context.Context, userId uuid.UUID, request *dto.ExportRequest) (*dto.ExportResponse, error)
	Import(ctx context.Context, userId uuid.UUID, payload []byte) (*dto.ImportResponse, error)
	DeleteBatch(ctx context.Context, userId uuid.UUID, request *dto.DeleteBatchRequest) (*dto.DeleteBatchResponse, error)
}

type archiveService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewArchiveService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IArchiveService {
	return &archiveService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Export returns full conversation trees for the requested ids. Ids the
// caller does not own are skipped per-entry, never failing the batch.
func (as *archiveService) Export(ctx context.Context, userId uuid.UUID, request *dto.ExportRequest) (*dto.ExportResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	response := &dto.ExportResponse{
		Conversations: []dto.ExportedConversation{},
	}

	for _, id := range request.ConversationIds {
		conversation, err := uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			response.Skipped = append(response.Skipped, dto.BatchEntryResult{
				Id:     id,
				Reason: batchSkipReason,
			})
			continue
		}

		messages, err := uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: id},
			specification.OrderBy{Field: "timestamp", Desc: false},
		)
		if err != nil {
			return nil, err
		}

		exported := dto.ExportedConversation{
			Id:        conversation.Id,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
			Messages:  make([]dto.ExportedMessage, 0, len(messages)),
		}
		for _, m := range messages {
			exported.Messages = append(exported.Messages, dto.ExportedMessage{
				Id:        m.Id,
				Content:   m.Content,
				Sender:    m.Sender,
				Timestamp: m.Timestamp,
				Model:     m.Model,
				Tokens:    m.Tokens,
			})
		}
		response.Conversations = append(response.Conversations, exported)
	}

	return response, nil
}

// Import adopts foreign conversation data as new records: every entry
// gets a fresh id, the caller as owner, and fresh timestamps. Accepts
// either a JSON array or the legacy keyed-object map. The payload shape
// is validated before any write, so a malformed body changes nothing.
func (as *archiveService) Import(ctx context.Context, userId uuid.UUID, payload []byte) (*dto.ImportResponse, error) {
	conversations, err := parseImportPayload(payload)
	if err != nil {
		return nil, err
	}

	uow := as.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	response := &dto.ImportResponse{
		Imported: make([]dto.CreateConversationResponse, 0, len(conversations)),
	}

	for _, incoming := range conversations {
		now := time.Now()

		title := incoming.Title
		if title == "" {
			title = constant.UntitledConversation
		}

		conversation := entity.Conversation{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
			return nil, err
		}

		for i, m := range incoming.Messages {
			// Preserve the relative order even when source timestamps
			// collide or are missing.
			timestamp := m.Timestamp
			if timestamp.IsZero() {
				timestamp = now.Add(time.Duration(i) * time.Millisecond)
			}
			message := entity.Message{
				Id:             uuid.New(),
				ConversationId: conversation.Id,
				Content:        m.Content,
				Sender:         m.Sender,
				Timestamp:      timestamp,
				Model:          m.Model,
				Tokens:         m.Tokens,
				CreatedAt:      now,
			}
			if err := uow.MessageRepository().Create(ctx, &message); err != nil {
				return nil, err
			}
		}

		response.Imported = append(response.Imported, dto.CreateConversationResponse{
			Id:        conversation.Id,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if as.eventPublisher != nil {
		for _, imported := range response.Imported {
			if err := as.eventPublisher.Publish(ctx, events.NewConversationEvent(events.TypeConversationCreated, userId.String(), imported.Id.String())); err != nil {
				as.logger.Warn("ArchiveService", "Failed to publish import event", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	return response, nil
}

// DeleteBatch removes the listed conversations with their messages,
// reporting a per-id outcome. Unknown or foreign ids are skipped.
func (as *archiveService) DeleteBatch(ctx context.Context, userId uuid.UUID, request *dto.DeleteBatchRequest) (*dto.DeleteBatchResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	response := &dto.DeleteBatchResponse{
		Results: make([]dto.BatchEntryResult, 0, len(request.ConversationIds)),
	}

	for _, id := range request.ConversationIds {
		conversation, err := uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			response.Results = append(response.Results, dto.BatchEntryResult{
				Id:     id,
				Reason: batchSkipReason,
			})
			continue
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		if err := uow.MessageRepository().DeleteByConversationId(ctx, id); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		response.Results = append(response.Results, dto.BatchEntryResult{
			Id:      id,
			Success: true,
		})

		if as.eventPublisher != nil {
			if err := as.eventPublisher.Publish(ctx, events.NewConversationEvent(events.TypeConversationDeleted, userId.String(), id.String())); err != nil {
				as.logger.Warn("ArchiveService", "Failed to publish delete event", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	return response, nil
}

// parseImportPayload accepts both supported shapes: a plain array of
// conversations, or the legacy map keyed by arbitrary strings.
func parseImportPayload(payload []byte) ([]dto.ExportedConversation, error) {
	// A literal null decodes into either shape without error; it is
	// neither, so both branches require a non-nil result.
	var asArray []dto.ExportedConversation
	if err := json.Unmarshal(payload, &asArray); err == nil && asArray != nil {
		return asArray, nil
	}

	var asMap map[string]dto.ExportedConversation
	if err := json.Unmarshal(payload, &asMap); err == nil && asMap != nil {
		conversations := make([]dto.ExportedConversation, 0, len(asMap))
		for _, c := range asMap {
			conversations = append(conversations, c)
		}
		return conversations, nil
	}

	return nil, fmt.Errorf("import payload must be a conversation array or keyed object")
}
