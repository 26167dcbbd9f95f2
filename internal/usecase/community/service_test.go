package community

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"unimarket/internal/domain/community"
	"unimarket/internal/domain/user"
	"unimarket/internal/infrastructure/cache"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memForum struct {
	mu         sync.Mutex
	categories map[uuid.UUID]community.Category
	posts      map[uuid.UUID]community.Post
	comments   map[uuid.UUID]community.Comment
	reactions  map[string]bool
	postReads  int
}

func newMemForum() *memForum {
	return &memForum{
		categories: map[uuid.UUID]community.Category{},
		posts:      map[uuid.UUID]community.Post{},
		comments:   map[uuid.UUID]community.Comment{},
		reactions:  map[string]bool{},
	}
}

type memCategories struct{ *memForum }

func (m memCategories) List(context.Context) ([]community.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]community.Category, 0)
	for _, c := range m.categories {
		if !c.Deleted {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m memCategories) GetByID(_ context.Context, id uuid.UUID) (community.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.Deleted {
		return community.Category{}, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (m memCategories) Create(_ context.Context, c community.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
	return nil
}

func (m memCategories) Update(ctx context.Context, c community.Category) error {
	return m.Create(ctx, c)
}

func (m memCategories) SoftDelete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.categories[id]
	c.Deleted = true
	m.categories[id] = c
	return nil
}

type memPosts struct{ *memForum }

func (m memPosts) Create(_ context.Context, p community.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.AuthorName = "author"
	m.posts[p.ID] = p
	return nil
}

func (m memPosts) GetByID(_ context.Context, kind community.ContentType, id uuid.UUID) (community.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postReads++
	p, ok := m.posts[id]
	if !ok || p.Deleted || p.Type != kind {
		return community.Post{}, repository.ErrPostNotFound
	}
	return p, nil
}

func (m memPosts) List(_ context.Context, kind community.ContentType, f community.ListFilter) ([]community.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]community.Post, 0)
	for _, p := range m.posts {
		if p.Type == kind && !p.Deleted && (f.CategoryID == nil || *f.CategoryID == p.CategoryID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memPosts) ListHot(ctx context.Context, kind community.ContentType, _ int) ([]community.Post, error) {
	return m.List(ctx, kind, community.ListFilter{})
}

func (m memPosts) Update(_ context.Context, p community.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
	return nil
}

func (m memPosts) SoftDelete(_ context.Context, _ community.ContentType, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.posts[id]
	p.Deleted = true
	m.posts[id] = p
	return nil
}

func (m memPosts) AcceptAnswer(_ context.Context, questionID, commentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.posts[questionID]
	if q.Solved {
		return repository.ErrAlreadySolved
	}
	q.Solved = true
	q.AcceptedCommentID = &commentID
	m.posts[questionID] = q
	return nil
}

type memComments struct{ *memForum }

func (m memComments) Create(_ context.Context, c community.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.posts[c.ContentID]
	p.CommentCount++
	m.posts[c.ContentID] = p
	c.AuthorName = "commenter"
	c.CreatedAt = time.Now()
	m.comments[c.ID] = c
	return nil
}

func (m memComments) GetByID(_ context.Context, id uuid.UUID) (community.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.Deleted {
		return community.Comment{}, repository.ErrCommentNotFound
	}
	return c, nil
}

func (m memComments) ListByContent(_ context.Context, kind community.ContentType, contentID uuid.UUID) ([]community.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]community.Comment, 0)
	for _, c := range m.comments {
		if c.ContentType == kind && c.ContentID == contentID && !c.Deleted {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m memComments) SoftDelete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.comments[id]
	c.Deleted = true
	m.comments[id] = c
	if q := m.posts[c.ContentID]; q.AcceptedCommentID != nil && *q.AcceptedCommentID == id {
		q.Solved = false
		q.AcceptedCommentID = nil
		m.posts[c.ContentID] = q
	}
	return nil
}

func (m memComments) CountAcceptedByAuthor(_ context.Context, authorID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.posts {
		if p.AcceptedCommentID != nil && m.comments[*p.AcceptedCommentID].AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

type memReactions struct{ *memForum }

func reactionKey(userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, r community.ReactionKind) string {
	return userID.String() + string(kind) + contentID.String() + string(r)
}

func (m memReactions) Add(_ context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, r community.ReactionKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := reactionKey(userID, kind, contentID, r)
	if m.reactions[k] {
		return false, nil
	}
	m.reactions[k] = true
	p := m.posts[contentID]
	p.LikeCount++
	m.posts[contentID] = p
	return true, nil
}

func (m memReactions) Remove(_ context.Context, userID uuid.UUID, kind community.ContentType, contentID uuid.UUID, r community.ReactionKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := reactionKey(userID, kind, contentID, r)
	if !m.reactions[k] {
		return false, nil
	}
	delete(m.reactions, k)
	return true, nil
}

func (m memReactions) ListFavorites(context.Context, uuid.UUID, int, int) ([]community.Favorite, error) {
	return nil, nil
}

type sentEvent struct {
	userID    uuid.UUID
	eventType string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recordingNotifier) Notify(userID uuid.UUID, eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{userID: userID, eventType: eventType})
}

type recordingAwarder struct {
	awarded map[uuid.UUID][]string
}

func (r *recordingAwarder) AwardQuietly(_ context.Context, userID uuid.UUID, code string) {
	r.awarded[userID] = append(r.awarded[userID], code)
}

type forumFixture struct {
	svc      *Service
	forum    *memForum
	mr       *miniredis.Miniredis
	notifier *recordingNotifier
	awards   *recordingAwarder
	category community.Category
	author   user.Actor
}

func newForumFixture(t *testing.T) forumFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	forum := newMemForum()
	notifier := &recordingNotifier{}
	awards := &recordingAwarder{awarded: map[uuid.UUID][]string{}}
	svc := NewService(Repositories{
		Categories: memCategories{forum},
		Posts:      memPosts{forum},
		Comments:   memComments{forum},
		Reactions:  memReactions{forum},
	}, cache.NewFromClient(client, time.Minute, logger.Nop()), notifier, awards, logger.Nop())

	cat, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "General", SortOrder: 1})
	require.NoError(t, err)

	return forumFixture{
		svc:      svc,
		forum:    forum,
		mr:       mr,
		notifier: notifier,
		awards:   awards,
		category: cat,
		author:   user.Actor{ID: uuid.New()},
	}
}

func (f forumFixture) post(t *testing.T, kind community.ContentType) community.Post {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), f.author, kind, PostInput{
		CategoryID: f.category.ID,
		Title:      "How do I <b>cache</b>?",
		Content:    "<p>Details</p><script>alert(1)</script>",
	})
	require.NoError(t, err)
	return p
}

func TestCategories_CachedWithHourTTL(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	cats, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.True(t, f.mr.Exists(CategoryListKey()))
	assert.Equal(t, time.Hour, f.mr.TTL(CategoryListKey()))

	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "Careers", SortOrder: 2})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(CategoryListKey()))

	cats, err = f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestCreatePost_SanitizesAndSlugs(t *testing.T) {
	f := newForumFixture(t)
	p := f.post(t, community.ContentTopic)

	assert.Equal(t, "How do I cache?", p.Title)
	assert.Equal(t, "<p>Details</p>", p.Content)
	assert.Regexp(t, `^how-do-i-cache-[0-9a-f]{8}$`, p.Slug)

	q := f.post(t, community.ContentQuestion)
	assert.Empty(t, q.Slug)
}

func TestGetPost_ReadThroughThenInvalidateOnUpdate(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	p := f.post(t, community.ContentTopic)
	key := DetailKey(community.ContentTopic, p.ID)

	_, err := f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(key))
	assert.Equal(t, 30*time.Minute, f.mr.TTL(key))

	reads := f.forum.postReads
	got, err := f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	assert.Equal(t, reads, f.forum.postReads, "second read must be served from cache")
	assert.Equal(t, p.Title, got.Title)

	_, err = f.svc.UpdatePost(ctx, f.author, community.ContentTopic, p.ID, PostInput{Title: "Renamed", Content: "new"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(key))

	got, err = f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestListAndHot_InvalidatedByNewPost(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	f.post(t, community.ContentQuestion)

	list, err := f.svc.ListPosts(ctx, community.ContentQuestion, community.ListFilter{CategoryID: &f.category.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	listKey := ListKey(community.ContentQuestion, &f.category.ID, 20, 0)
	require.True(t, f.mr.Exists(listKey))
	assert.Equal(t, 5*time.Minute, f.mr.TTL(listKey))

	_, err = f.svc.HotPosts(ctx, community.ContentQuestion, 0)
	require.NoError(t, err)
	hotKey := HotKey(community.ContentQuestion, 10)
	require.True(t, f.mr.Exists(hotKey))
	assert.Equal(t, 10*time.Minute, f.mr.TTL(hotKey))

	f.post(t, community.ContentQuestion)
	assert.False(t, f.mr.Exists(listKey))
	assert.False(t, f.mr.Exists(hotKey))

	list, err = f.svc.ListPosts(ctx, community.ContentQuestion, community.ListFilter{CategoryID: &f.category.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDeletePost_HidesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	p := f.post(t, community.ContentTopic)
	_, err := f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)

	err = f.svc.DeletePost(ctx, user.Actor{ID: uuid.New()}, community.ContentTopic, p.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)

	admin := user.Actor{ID: uuid.New(), Roles: []string{user.RoleAdmin}}
	require.NoError(t, f.svc.DeletePost(ctx, admin, community.ContentTopic, p.ID))
	assert.False(t, f.mr.Exists(DetailKey(community.ContentTopic, p.ID)))
	assert.True(t, f.forum.posts[p.ID].Deleted)

	_, err = f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestComments_TreeCacheAndReplyNotification(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	p := f.post(t, community.ContentTopic)

	root, err := f.svc.CreateComment(ctx, f.author, community.ContentTopic, p.ID, CommentInput{Content: "first"})
	require.NoError(t, err)

	tree, err := f.svc.ListComments(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	commentsKey := CommentListKey(community.ContentTopic, p.ID)
	require.True(t, f.mr.Exists(commentsKey))

	replier := user.Actor{ID: uuid.New()}
	_, err = f.svc.CreateComment(ctx, replier, community.ContentTopic, p.ID, CommentInput{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(commentsKey))

	tree, err = f.svc.ListComments(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "reply", tree[0].Replies[0].Content)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, f.author.ID, f.notifier.events[0].userID)
	assert.Equal(t, EventCommentReply, f.notifier.events[0].eventType)

	got, err := f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
}

func TestCreateComment_ParentMustShareContent(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	a := f.post(t, community.ContentTopic)
	b := f.post(t, community.ContentTopic)

	onA, err := f.svc.CreateComment(ctx, f.author, community.ContentTopic, a.ID, CommentInput{Content: "on a"})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(ctx, f.author, community.ContentTopic, b.ID, CommentInput{Content: "x", ParentID: &onA.ID})
	assert.ErrorIs(t, err, ErrForeignParent)

	_, err = f.svc.CreateComment(ctx, f.author, community.ContentTopic, b.ID, CommentInput{Content: "<script></script>"})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestAcceptAnswer(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	q := f.post(t, community.ContentQuestion)
	answerer := user.Actor{ID: uuid.New()}

	answer, err := f.svc.CreateComment(ctx, answerer, community.ContentQuestion, q.ID, CommentInput{Content: "use redis"})
	require.NoError(t, err)

	_, err = f.svc.AcceptAnswer(ctx, answerer, q.ID, answer.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)

	_, err = f.svc.GetPost(ctx, community.ContentQuestion, q.ID)
	require.NoError(t, err)

	solved, err := f.svc.AcceptAnswer(ctx, f.author, q.ID, answer.ID)
	require.NoError(t, err)
	assert.True(t, solved.Solved)
	require.NotNil(t, solved.AcceptedCommentID)
	assert.Equal(t, answer.ID, *solved.AcceptedCommentID)
	assert.False(t, f.mr.Exists(DetailKey(community.ContentQuestion, q.ID)))

	assert.Equal(t, []string{"FIRST_ANSWER_ACCEPTED"}, f.awards.awarded[answerer.ID])
	require.NotEmpty(t, f.notifier.events)
	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, answerer.ID, last.userID)
	assert.Equal(t, EventAnswerAccepted, last.eventType)

	_, err = f.svc.AcceptAnswer(ctx, f.author, q.ID, answer.ID)
	assert.ErrorIs(t, err, ErrAlreadySolved)
}

func TestDeleteComment_InvalidatesAndReopensQuestion(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	q := f.post(t, community.ContentQuestion)
	answerer := user.Actor{ID: uuid.New()}

	answer, err := f.svc.CreateComment(ctx, answerer, community.ContentQuestion, q.ID, CommentInput{Content: "use redis"})
	require.NoError(t, err)
	_, err = f.svc.AcceptAnswer(ctx, f.author, q.ID, answer.ID)
	require.NoError(t, err)

	_, err = f.svc.ListComments(ctx, community.ContentQuestion, q.ID)
	require.NoError(t, err)
	_, err = f.svc.GetPost(ctx, community.ContentQuestion, q.ID)
	require.NoError(t, err)
	commentsKey := CommentListKey(community.ContentQuestion, q.ID)
	detailKey := DetailKey(community.ContentQuestion, q.ID)
	require.True(t, f.mr.Exists(commentsKey))
	require.True(t, f.mr.Exists(detailKey))

	err = f.svc.DeleteComment(ctx, user.Actor{ID: uuid.New()}, answer.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.True(t, f.mr.Exists(commentsKey))

	require.NoError(t, f.svc.DeleteComment(ctx, answerer, answer.ID))
	assert.False(t, f.mr.Exists(commentsKey))
	assert.False(t, f.mr.Exists(detailKey))

	reopened, err := f.svc.GetPost(ctx, community.ContentQuestion, q.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Solved)
	assert.Nil(t, reopened.AcceptedCommentID)

	tree, err := f.svc.ListComments(ctx, community.ContentQuestion, q.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestCategoryWrites_Invalidate(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	f.post(t, community.ContentTopic)
	f.post(t, community.ContentQuestion)

	warm := func() (topics, questions string) {
		t.Helper()
		_, err := f.svc.ListCategories(ctx)
		require.NoError(t, err)
		_, err = f.svc.ListPosts(ctx, community.ContentTopic, community.ListFilter{})
		require.NoError(t, err)
		_, err = f.svc.ListPosts(ctx, community.ContentQuestion, community.ListFilter{})
		require.NoError(t, err)
		topics = ListKey(community.ContentTopic, nil, 20, 0)
		questions = ListKey(community.ContentQuestion, nil, 20, 0)
		require.True(t, f.mr.Exists(CategoryListKey()))
		require.True(t, f.mr.Exists(topics))
		require.True(t, f.mr.Exists(questions))
		return topics, questions
	}

	warm()
	renamed, err := f.svc.UpdateCategory(ctx, f.category.ID, CategoryInput{Name: "Announcements", SortOrder: 3})
	require.NoError(t, err)
	assert.Equal(t, "Announcements", renamed.Name)
	assert.False(t, f.mr.Exists(CategoryListKey()))

	cats, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Announcements", cats[0].Name)

	topics, questions := warm()
	require.NoError(t, f.svc.DeleteCategory(ctx, f.category.ID))
	assert.False(t, f.mr.Exists(CategoryListKey()))
	assert.False(t, f.mr.Exists(topics))
	assert.False(t, f.mr.Exists(questions))

	cats, err = f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestReact_IdempotentAndInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)
	p := f.post(t, community.ContentTopic)
	fan := user.Actor{ID: uuid.New()}
	key := DetailKey(community.ContentTopic, p.ID)

	_, err := f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.React(ctx, fan, community.ContentTopic, p.ID, community.ReactionLike, true))
	assert.False(t, f.mr.Exists(key))

	_, err = f.svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.React(ctx, fan, community.ContentTopic, p.ID, community.ReactionLike, true))
	assert.True(t, f.mr.Exists(key), "a repeated like changes nothing")
	assert.Equal(t, 1, f.forum.posts[p.ID].LikeCount)

	err = f.svc.React(ctx, fan, community.ContentTopic, p.ID, "SHARE", true)
	assert.ErrorIs(t, err, ErrUnknownReaction)
}

func TestService_WorksWithoutCache(t *testing.T) {
	ctx := context.Background()
	forum := newMemForum()
	svc := NewService(Repositories{
		Categories: memCategories{forum},
		Posts:      memPosts{forum},
		Comments:   memComments{forum},
		Reactions:  memReactions{forum},
	}, nil, nil, nil, nil)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "General"})
	require.NoError(t, err)
	p, err := svc.CreatePost(ctx, user.Actor{ID: uuid.New()}, community.ContentTopic, PostInput{CategoryID: cat.ID, Title: "t", Content: "c"})
	require.NoError(t, err)
	got, err := svc.GetPost(ctx, community.ContentTopic, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.ListPosts(ctx, "POLL", community.ListFilter{})
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestCacheKeys(t *testing.T) {
	id := uuid.MustParse("6f1c1a8e-4c1e-4a53-9f58-0d7c1d0b9a01")
	assert.Equal(t, "community:category:list", CategoryListKey())
	assert.Equal(t, "community:topic:"+id.String(), DetailKey(community.ContentTopic, id))
	assert.Equal(t, "community:question:"+id.String(), DetailKey(community.ContentQuestion, id))
	assert.Equal(t, "community:topic:list:all:20:40", ListKey(community.ContentTopic, nil, 20, 40))
	assert.Equal(t, "community:question:list:"+id.String()+":5:0", ListKey(community.ContentQuestion, &id, 5, 0))
	assert.Equal(t, "community:topic:hot:10", HotKey(community.ContentTopic, 10))
	assert.Equal(t, "community:comment:list:QUESTION:"+id.String(), CommentListKey(community.ContentQuestion, id))

	limit, offset := listPage(0, -3)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 50, hotLimit(500))
}
