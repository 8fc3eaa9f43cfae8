package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"multichat-be/internal/constant"
	"multichat-be/internal/dto"
	"multichat-be/internal/repository/memory"

	"github.com/google/uuid"
)

func newTestChatService(store *memStore, generator *fakeGenerator) (IChatService, *recordingEventPublisher, *recordingStreamPublisher) {
	eventPub := &recordingEventPublisher{}
	streamPub := &recordingStreamPublisher{}
	svc := NewChatService(
		&fakeFactory{store: store},
		generator,
		memory.NewGenerationRepository(),
		streamPub,
		eventPub,
		noopLogger{},
		5*time.Second,
	)
	return svc, eventPub, streamPub
}

func TestCreateConversationUsesPlaceholderTitle(t *testing.T) {
	store := newMemStore()
	svc, eventPub, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	res, err := svc.CreateConversation(context.Background(), userId)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if res.Title != constant.UntitledConversation {
		t.Errorf("title = %q, want %q", res.Title, constant.UntitledConversation)
	}
	if got := eventPub.types(); len(got) != 1 || got[0] != "CONVERSATION_CREATED" {
		t.Errorf("events = %v, want [CONVERSATION_CREATED]", got)
	}
}

func TestSendMessageStreamsChunks(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{chunks: []string{"Hel", "lo"}})
	userId := uuid.New()

	conv, err := svc.CreateConversation(context.Background(), userId)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	res, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "  Hello there  ",
		ModelId:        "gemini-pro",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if res.Sent.Content != "Hello there" {
		t.Errorf("sent content = %q, want trimmed input", res.Sent.Content)
	}
	if res.Reply.Content != "Hello" {
		t.Errorf("reply content = %q, want %q", res.Reply.Content, "Hello")
	}
	if res.Reply.Sender != constant.MessageSenderBot {
		t.Errorf("reply sender = %q", res.Reply.Sender)
	}

	// Exactly one patch per chunk, accumulated in order.
	wantPatches := []string{"Hel", "Hello"}
	if len(store.contentPatches) != len(wantPatches) {
		t.Fatalf("patches = %v, want %v", store.contentPatches, wantPatches)
	}
	for i, want := range wantPatches {
		if store.contentPatches[i] != want {
			t.Errorf("patch[%d] = %q, want %q", i, store.contentPatches[i], want)
		}
	}

	// First message rewrites the placeholder title.
	if res.ConversationTitle != "Hello there" {
		t.Errorf("title = %q, want %q", res.ConversationTitle, "Hello there")
	}

	// Final state: exactly one user and one bot message, ordered oldest first.
	msgs, err := svc.GetMessages(context.Background(), userId, conv.Id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("message count = %d, want 2", len(msgs))
	}
	if msgs[0].Sender != constant.MessageSenderUser || msgs[1].Sender != constant.MessageSenderBot {
		t.Errorf("order = [%s %s], want [user bot]", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[1].Content != "Hello" {
		t.Errorf("persisted bot content = %q", msgs[1].Content)
	}
}

func TestSendMessageBlankInputRejected(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	_, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "   ",
		ModelId:        "gemini-pro",
	})
	if err == nil {
		t.Fatal("expected error for blank input")
	}
}

func TestSendMessageUnknownModelRejected(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	_, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "hi",
		ModelId:        "gpt-99",
	})
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestSendMessageForeignConversationRejected(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{chunks: []string{"x"}})
	owner := uuid.New()
	stranger := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), owner)
	_, err := svc.SendMessage(context.Background(), stranger, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "hi",
		ModelId:        "gemini-pro",
	})
	if err == nil {
		t.Fatal("expected access denied error")
	}
}

func TestSendMessageRejectsConcurrentGeneration(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{chunks: []string{"thinking"}, block: make(chan struct{})}
	svc, _, _ := newTestChatService(store, gen)
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
			ConversationId: conv.Id,
			Content:        "first",
			ModelId:        "gemini-pro",
		})
		firstDone <- err
	}()

	// Wait until the first generation has streamed its chunk and is
	// blocked inside the gateway.
	deadline := time.After(2 * time.Second)
	for len(store.contentPatches) == 0 {
		select {
		case <-deadline:
			t.Fatal("first generation never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "second",
		ModelId:        "gemini-pro",
	})
	if !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("second send error = %v, want ErrGenerationInFlight", err)
	}

	close(gen.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send: %v", err)
	}

	// After the first finishes, sending works again.
	if _, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "third",
		ModelId:        "gemini-pro",
	}); err != nil {
		t.Errorf("send after completion: %v", err)
	}
}

func TestSendMessageGatewayFailureWritesErrorContent(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{err: errors.New("api key invalid")}
	svc, _, _ := newTestChatService(store, gen)
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	res, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "hi",
		ModelId:        "gpt-4o",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	want := fmt.Sprintf(constant.GenerationFailedTemplate, errors.New("api key invalid"))
	if res.Reply.Content != want {
		t.Errorf("reply content = %q, want error template", res.Reply.Content)
	}
	if res.Reply.Content == "" {
		t.Error("reply content must never be left empty on failure")
	}

	// The persisted message carries the error string too.
	msgs, _ := svc.GetMessages(context.Background(), userId, conv.Id)
	if got := msgs[len(msgs)-1].Content; !strings.Contains(got, "api key invalid") {
		t.Errorf("persisted content = %q, want the failure surfaced", got)
	}
}

func TestStopGenerationKeepsPartialContent(t *testing.T) {
	store := newMemStore()
	gen := &fakeGenerator{chunks: []string{"partial "}, block: make(chan struct{})}
	svc, _, _ := newTestChatService(store, gen)
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)

	done := make(chan *dto.SendMessageResponse, 1)
	go func() {
		res, _ := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
			ConversationId: conv.Id,
			Content:        "q",
			ModelId:        "gemini-pro",
		})
		done <- res
	}()

	deadline := time.After(2 * time.Second)
	for len(store.contentPatches) == 0 {
		select {
		case <-deadline:
			t.Fatal("generation never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	stop, err := svc.StopGeneration(context.Background(), userId, conv.Id)
	if err != nil {
		t.Fatalf("StopGeneration: %v", err)
	}
	if !stop.Stopped {
		t.Error("expected an in-flight generation to be stopped")
	}

	res := <-done
	if res == nil {
		t.Fatal("SendMessage returned nil response")
	}
	if res.Reply.Content != "partial " {
		t.Errorf("reply content = %q, want accumulated partial text", res.Reply.Content)
	}
}

func TestStopGenerationWithNothingRunning(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	stop, err := svc.StopGeneration(context.Background(), userId, conv.Id)
	if err != nil {
		t.Fatalf("StopGeneration: %v", err)
	}
	if stop.Stopped {
		t.Error("nothing was running, Stopped should be false")
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{chunks: []string{"ok"}})
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	if _, err := svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "hi",
		ModelId:        "gemini-pro",
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := svc.DeleteConversation(context.Background(), userId, conv.Id); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.conversations) != 0 {
		t.Errorf("conversations left = %d", len(store.conversations))
	}
	for _, m := range store.messages {
		if m.ConversationId == conv.Id {
			t.Errorf("orphaned message %s", m.Id)
		}
	}
}

func TestClearAllConversationsOnlyOwn(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	alice := uuid.New()
	bob := uuid.New()

	svc.CreateConversation(context.Background(), alice)
	svc.CreateConversation(context.Background(), alice)
	keep, _ := svc.CreateConversation(context.Background(), bob)

	if err := svc.ClearAllConversations(context.Background(), alice); err != nil {
		t.Fatalf("ClearAllConversations: %v", err)
	}

	remaining, _ := svc.GetAllConversations(context.Background(), bob)
	if len(remaining) != 1 || remaining[0].Id != keep.Id {
		t.Errorf("bob's conversations = %v, want only %s", remaining, keep.Id)
	}
	gone, _ := svc.GetAllConversations(context.Background(), alice)
	if len(gone) != 0 {
		t.Errorf("alice still has %d conversations", len(gone))
	}
}

func TestRenameConversation(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	conv, _ := svc.CreateConversation(context.Background(), userId)
	if err := svc.RenameConversation(context.Background(), userId, conv.Id, &dto.RenameConversationRequest{Title: "  My research  "}); err != nil {
		t.Fatalf("RenameConversation: %v", err)
	}

	list, _ := svc.GetAllConversations(context.Background(), userId)
	if list[0].Title != "My research" {
		t.Errorf("title = %q", list[0].Title)
	}
}

func TestSendMessageFailedCommitPublishesNoRename(t *testing.T) {
	store := newMemStore()
	svc, eventPub, _ := newTestChatService(store, &fakeGenerator{chunks: []string{"hi"}})
	userId := uuid.New()

	conv, err := svc.CreateConversation(context.Background(), userId)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	store.mu.Lock()
	store.commitErr = errors.New("connection reset")
	store.mu.Unlock()

	_, err = svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ConversationId: conv.Id,
		Content:        "What is a monad?",
		ModelId:        "gemini-pro",
	})
	if err == nil {
		t.Fatal("expected commit failure to surface")
	}

	for _, typ := range eventPub.types() {
		if typ == "CONVERSATION_RENAMED" {
			t.Error("rename hint published for a transaction that never committed")
		}
	}
}

func TestBootstrapUserSeedsWelcome(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newTestChatService(store, &fakeGenerator{})
	userId := uuid.New()

	if err := svc.BootstrapUser(context.Background(), userId); err != nil {
		t.Fatalf("BootstrapUser: %v", err)
	}

	list, _ := svc.GetAllConversations(context.Background(), userId)
	if len(list) != 2 {
		t.Fatalf("conversation count = %d, want 2", len(list))
	}
	// Welcome is newer, so it lists first; the guide thread follows.
	if list[0].Title != constant.WelcomeConversationTitle {
		t.Errorf("title = %q", list[0].Title)
	}
	if list[1].Title != constant.GuideConversationTitle {
		t.Errorf("guide title = %q", list[1].Title)
	}

	msgs, _ := svc.GetMessages(context.Background(), userId, list[0].Id)
	if len(msgs) != 2 {
		t.Fatalf("seed messages = %d, want 2", len(msgs))
	}
	msgs, _ = svc.GetMessages(context.Background(), userId, list[1].Id)
	if len(msgs) != 0 {
		t.Fatalf("guide thread messages = %d, want 0", len(msgs))
	}

	// A second bootstrap is a no-op.
	if err := svc.BootstrapUser(context.Background(), userId); err != nil {
		t.Fatalf("second BootstrapUser: %v", err)
	}
	list, _ = svc.GetAllConversations(context.Background(), userId)
	if len(list) != 2 {
		t.Errorf("bootstrap not idempotent, count = %d", len(list))
	}
}
