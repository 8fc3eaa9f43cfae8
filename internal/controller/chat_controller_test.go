package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"multichat-be/internal/dto"
	"multichat-be/internal/pkg/serverutils"
	"multichat-be/internal/service"
	"multichat-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubChatService struct {
	sendErr  error
	sendRes  *dto.SendMessageResponse
	lastUser uuid.UUID
}

func (s *stubChatService) CreateConversation(ctx context.Context, userId uuid.UUID) (*dto.CreateConversationResponse, error) {
	s.lastUser = userId
	return &dto.CreateConversationResponse{Id: uuid.New(), Title: "New Thread"}, nil
}

func (s *stubChatService) GetAllConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error) {
	s.lastUser = userId
	return []*dto.GetAllConversationsResponse{}, nil
}

func (s *stubChatService) GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error) {
	return []*dto.MessageResponse{}, nil
}

func (s *stubChatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	s.lastUser = userId
	return s.sendRes, s.sendErr
}

func (s *stubChatService) StopGeneration(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.StopGenerationResponse, error) {
	return &dto.StopGenerationResponse{ConversationId: conversationId, Stopped: false}, nil
}

func (s *stubChatService) RenameConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, request *dto.RenameConversationRequest) error {
	return nil
}

func (s *stubChatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	return nil
}

func (s *stubChatService) DeleteMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) error {
	return nil
}

func (s *stubChatService) ClearAllConversations(ctx context.Context, userId uuid.UUID) error {
	return nil
}

func (s *stubChatService) BootstrapUser(ctx context.Context, userId uuid.UUID) error {
	return nil
}

func newChatTestApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func signTestToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	os.Setenv("JWT_SECRET", "test_secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test_secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestChatRoutesRequireToken(t *testing.T) {
	app := newChatTestApp(&stubChatService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/conversations", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSendMessageConflictWhenGenerationInFlight(t *testing.T) {
	svc := &stubChatService{sendErr: service.ErrGenerationInFlight}
	app := newChatTestApp(svc)
	userId := uuid.New()

	body, _ := json.Marshal(dto.SendMessageRequest{
		ConversationId: uuid.New(),
		Content:        "hello",
		ModelId:        "gemini-pro",
	})
	req := httptest.NewRequest("POST", "/api/chat/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, userId))

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var errBody serverutils.ErrorBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.False(t, errBody.Success)
	assert.Equal(t, fiber.StatusConflict, errBody.Code)
	assert.Equal(t, userId, svc.lastUser)
}

func TestSendMessageRejectsMissingFields(t *testing.T) {
	app := newChatTestApp(&stubChatService{})

	body := []byte(`{"content": "hello"}`)
	req := httptest.NewRequest("POST", "/api/chat/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, uuid.New()))

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListModelsMarksDefault(t *testing.T) {
	app := newChatTestApp(&stubChatService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/models", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, uuid.New()))

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope serverutils.Response[[]dto.ModelResponse]
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, len(llm.Catalog))

	defaults := 0
	for _, m := range envelope.Data {
		if m.Default {
			defaults++
			assert.Equal(t, llm.DefaultModel().ID, m.Id)
		}
	}
	assert.Equal(t, 1, defaults)
}
