package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	mu         sync.Mutex
	dispatched []*entity.Message
	recipients [][]uuid.UUID
	err        error
}

func (d *fakeDelivery) Dispatch(ctx context.Context, msg *entity.Message, recipients []uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, msg)
	d.recipients = append(d.recipients, recipients)
	return d.err
}

func newChatFixture() (*fakeUowFactory, *fakeDelivery, IChatService) {
	factory := newFakeUowFactory()
	delivery := &fakeDelivery{}
	authorizer := NewMembershipAuthorizer(factory)
	svc := NewChatService(factory, authorizer, delivery, nopLogger{})
	return factory, delivery, svc
}

func seedUser(factory *fakeUowFactory, username string) uuid.UUID {
	id := uuid.New()
	factory.store.users[id] = &entity.User{
		Id:       id,
		Username: username,
		FullName: username,
	}
	return id
}

func seedChat(factory *fakeUowFactory, active bool, members ...uuid.UUID) uuid.UUID {
	chatID := uuid.New()
	factory.store.chats[chatID] = &entity.Chat{
		Id:     chatID,
		Name:   "room",
		Active: active,
	}
	for _, userID := range members {
		mid := uuid.New()
		factory.store.memberships[mid] = &entity.Membership{
			Id:     mid,
			ChatId: chatID,
			UserId: userID,
		}
	}
	return chatID
}

func TestCreateChatAddsCreatorMembership(t *testing.T) {
	factory, _, svc := newChatFixture()
	creator := seedUser(factory, "alice")

	chat, err := svc.CreateChat(context.Background(), creator, &dto.CreateChatRequest{Name: "general"})
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.True(t, chat.Active)

	membership, err := factory.NewUnitOfWork(context.Background()).MembershipRepository().FindOne(
		context.Background(),
		specification.ByChatID{ChatID: chat.Id},
		specification.ByUserID{UserID: creator},
	)
	require.NoError(t, err)
	assert.NotNil(t, membership, "creator must be a member of the new chat")
}

func TestSendMessageRequiresMembership(t *testing.T) {
	factory, delivery, svc := newChatFixture()
	member := seedUser(factory, "alice")
	outsider := seedUser(factory, "mallory")
	chatID := seedChat(factory, true, member)

	_, err := svc.SendMessage(context.Background(), outsider, chatID, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Empty(t, delivery.dispatched)
}

func TestSendMessagePersistsAndDispatches(t *testing.T) {
	factory, delivery, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice, bob)

	msg, err := svc.SendMessage(context.Background(), alice, chatID, "hello bob")
	require.NoError(t, err)
	assert.Equal(t, alice, msg.FromUserId)
	assert.Equal(t, chatID, msg.ChatId)

	stored, err := factory.NewUnitOfWork(context.Background()).MessageRepository().FindOne(
		context.Background(),
		specification.ByID{ID: msg.Id},
	)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "hello bob", stored.Content)

	require.Len(t, delivery.recipients, 1)
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, delivery.recipients[0])
}

func TestSendMessageInactiveChat(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	chatID := seedChat(factory, false, alice)

	_, err := svc.SendMessage(context.Background(), alice, chatID, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSendMessageSurvivesPartialDelivery(t *testing.T) {
	factory, delivery, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice, bob)

	delivery.err = &apperr.PartialDeliveryError{
		Failures: []apperr.DeliveryFailure{{UserID: bob, Err: assert.AnError}},
	}

	msg, err := svc.SendMessage(context.Background(), alice, chatID, "hi")
	require.NoError(t, err, "a delivery hiccup must not fail the send")
	require.NotNil(t, msg)
}

func TestAddMember(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice)

	require.NoError(t, svc.AddMember(context.Background(), alice, chatID, bob))

	err := svc.AddMember(context.Background(), alice, chatID, bob)
	assert.ErrorIs(t, err, apperr.ErrAlreadyMember)
}

func TestAddMemberConcurrent(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice)

	const adders = 16
	errs := make(chan error, adders)
	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.AddMember(context.Background(), alice, chatID, bob)
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrAlreadyMember)
	}
	assert.Equal(t, 1, successes, "exactly one add may win")

	count, err := factory.NewUnitOfWork(context.Background()).MembershipRepository().Count(
		context.Background(),
		specification.ByChatID{ChatID: chatID},
		specification.ByUserID{UserID: bob},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// blindMembershipRepo hides existing rows from FindOne, forcing AddMember
// past its pre-check the way a lost race does. The insert then has to be
// stopped by the unique-index behavior of Create.
type blindMembershipRepo struct {
	*fakeMembershipRepo
}

func (r *blindMembershipRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Membership, error) {
	return nil, nil
}

type blindMembershipUow struct {
	fakeUow
}

func (u *blindMembershipUow) MembershipRepository() contract.MembershipRepository {
	return &blindMembershipRepo{&fakeMembershipRepo{store: u.store}}
}

type blindMembershipFactory struct {
	store *fakeStore
}

func (f *blindMembershipFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &blindMembershipUow{fakeUow{store: f.store}}
}

func TestAddMemberLostInsertRace(t *testing.T) {
	factory, delivery, _ := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice, bob)

	// The authorizer sees real memberships; the directory's own repo view
	// simulates the window where the concurrent winner's row is not yet
	// visible to the pre-check.
	authorizer := NewMembershipAuthorizer(factory)
	svc := NewChatService(&blindMembershipFactory{store: factory.store}, authorizer, delivery, nopLogger{})

	err := svc.AddMember(context.Background(), alice, chatID, bob)
	assert.ErrorIs(t, err, apperr.ErrAlreadyMember)

	count, err := factory.NewUnitOfWork(context.Background()).MembershipRepository().Count(
		context.Background(),
		specification.ByChatID{ChatID: chatID},
		specification.ByUserID{UserID: bob},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "the losing insert must not add a second row")
}

func TestAddMemberUnknownUser(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	chatID := seedChat(factory, true, alice)

	err := svc.AddMember(context.Background(), alice, chatID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddMemberRequiresMembership(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	outsider := seedUser(factory, "mallory")
	chatID := seedChat(factory, true, alice)

	err := svc.AddMember(context.Background(), outsider, chatID, outsider)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestRemoveMember(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice, bob)

	require.NoError(t, svc.RemoveMember(context.Background(), alice, chatID, bob))

	err := svc.RemoveMember(context.Background(), alice, chatID, bob)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.SendMessage(context.Background(), bob, chatID, "still here?")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestListChatsOnlyMemberships(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	mine := seedChat(factory, true, alice)
	seedChat(factory, true, bob)

	chats, err := svc.ListChats(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, mine, chats[0].Id)
}

func TestHistoryOrderedAndPaged(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	chatID := seedChat(factory, true, alice)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		id := uuid.New()
		factory.store.messages[id] = &entity.Message{
			Id:         id,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			FromUserId: alice,
			ChatId:     chatID,
			Content:    fmt.Sprintf("msg-%d", i),
		}
	}

	history, err := svc.History(context.Background(), alice, chatID, 3, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "msg-1", history[0].Content)
	assert.Equal(t, "msg-3", history[2].Content)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].CreatedAt.After(history[i-1].CreatedAt))
	}
}

func TestHistoryRequiresMembership(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	outsider := seedUser(factory, "mallory")
	chatID := seedChat(factory, true, alice)

	_, err := svc.History(context.Background(), outsider, chatID, 10, 0)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestMarkReadIdempotent(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	bob := seedUser(factory, "bob")
	chatID := seedChat(factory, true, alice, bob)

	msgID := uuid.New()
	factory.store.messages[msgID] = &entity.Message{
		Id:         msgID,
		CreatedAt:  time.Now(),
		FromUserId: alice,
		ChatId:     chatID,
		Content:    "hello",
	}

	require.NoError(t, svc.MarkRead(context.Background(), bob, msgID))

	uow := factory.NewUnitOfWork(context.Background())
	first, err := uow.ReadStatusRepository().FindOne(context.Background(),
		specification.ByUserID{UserID: bob},
		specification.ByMessageID{MessageID: msgID},
	)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, first.ReadAt)

	require.NoError(t, svc.MarkRead(context.Background(), bob, msgID))

	second, err := uow.ReadStatusRepository().FindOne(context.Background(),
		specification.ByUserID{UserID: bob},
		specification.ByMessageID{MessageID: msgID},
	)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ReadAt, second.ReadAt, "re-reading must keep the first read timestamp")
}

func TestMarkReadRequiresMembership(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	outsider := seedUser(factory, "mallory")
	chatID := seedChat(factory, true, alice)

	msgID := uuid.New()
	factory.store.messages[msgID] = &entity.Message{
		Id:         msgID,
		CreatedAt:  time.Now(),
		FromUserId: alice,
		ChatId:     chatID,
		Content:    "secret",
	}

	err := svc.MarkRead(context.Background(), outsider, msgID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestMarkReadUnknownMessage(t *testing.T) {
	factory, _, svc := newChatFixture()
	alice := seedUser(factory, "alice")
	seedChat(factory, true, alice)

	err := svc.MarkRead(context.Background(), alice, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
