package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"
	"realtime-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatRepository())
	assert.NotNil(t, uow.MessageRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Read Status Repository", func(t *testing.T) {
		count, err := uow.ReadStatusRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ReadStatus count: %d", count)
	})

	t.Run("Transactional chat create", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)

		userId := uuid.New()
		user := &entity.User{
			Id:           userId,
			Username:     "it-" + uuid.New().String()[:8],
			FullName:     "Integration Test User",
			PasswordHash: "x",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		require.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		require.NoError(t, txUow.UserRepository().Create(ctx, user))

		chat := &entity.Chat{
			Id:     uuid.New(),
			Name:   "integration-room",
			Active: true,
		}
		require.NoError(t, txUow.ChatRepository().Create(ctx, chat))
		require.NoError(t, txUow.MembershipRepository().Create(ctx, &entity.Membership{
			Id:     uuid.New(),
			ChatId: chat.Id,
			UserId: userId,
		}))

		found, err := txUow.MembershipRepository().FindOne(ctx,
			specification.ByChatID{ChatID: chat.Id},
			specification.ByUserID{UserID: userId},
		)
		require.NoError(t, err)
		assert.NotNil(t, found)

		// Rolled back by the deferred call; nothing leaks into the DB.
	})
}
