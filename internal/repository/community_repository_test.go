package repository

import (
	"context"
	"testing"

	"unimarket/internal/domain/community"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCommentRepository_Create_BumpsCount(t *testing.T) {
	db, mock := newMock(t)
	c := community.Comment{
		ID:          uuid.New(),
		ContentType: community.ContentQuestion,
		ContentID:   uuid.New(),
		AuthorID:    uuid.New(),
		Content:     "try a mutex",
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE community_questions SET comment_count = comment_count \\+ 1").
		WithArgs(c.ContentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO community_comments").
		WithArgs(c.ID, "QUESTION", c.ContentID, nil, c.AuthorID, c.Content).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresCommentRepository(db).Create(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommentRepository_Create_DeletedPost(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE community_topics SET comment_count").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewPostgresCommentRepository(db).Create(context.Background(), community.Comment{
		ID:          uuid.New(),
		ContentType: community.ContentTopic,
		ContentID:   uuid.New(),
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommentRepository_SoftDelete_ClearsAcceptedAnswer(t *testing.T) {
	db, mock := newMock(t)
	id, questionID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE community_comments SET deleted = TRUE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "content_id"}).AddRow("QUESTION", questionID))
	mock.ExpectExec("UPDATE community_questions SET comment_count = GREATEST").
		WithArgs(questionID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE community_questions SET solved = FALSE, accepted_comment_id = NULL").
		WithArgs(questionID, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresCommentRepository(db).SoftDelete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommentRepository_SoftDelete_TopicLeavesQuestionsAlone(t *testing.T) {
	db, mock := newMock(t)
	id, topicID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE community_comments SET deleted = TRUE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"content_type", "content_id"}).AddRow("TOPIC", topicID))
	mock.ExpectExec("UPDATE community_topics SET comment_count = GREATEST").
		WithArgs(topicID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresCommentRepository(db).SoftDelete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReactionRepository_Add_Idempotent(t *testing.T) {
	ctx := context.Background()
	userID, contentID := uuid.New(), uuid.New()

	t.Run("first like bumps the counter", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO community_likes").
			WithArgs(userID, "TOPIC", contentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE community_topics SET like_count = GREATEST\\(like_count \\+ 1, 0\\)").
			WithArgs(contentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		changed, err := NewPostgresReactionRepository(db).Add(ctx, userID, community.ContentTopic, contentID, community.ReactionLike)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat like is a no-op", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO community_likes").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		changed, err := NewPostgresReactionRepository(db).Add(ctx, userID, community.ContentTopic, contentID, community.ReactionLike)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPostRepository_UnknownKind(t *testing.T) {
	db, _ := newMock(t)
	_, err := NewPostgresPostRepository(db).GetByID(context.Background(), community.ContentType("POLL"), uuid.New())
	assert.Error(t, err)
}
