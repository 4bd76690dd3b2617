package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/cache"
	"socialnet/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// In unit tests, we don't want to hit a real database. Instead, we create
// mocks that implement the same interfaces but return controlled responses.
//
// This is the KEY insight: because the services depend on the repository
// INTERFACES (not the concrete implementations), we can swap in mocks.
// Function fields let each test define custom behavior; call slices track
// invocations for assertions.

type mockUserRepository struct {
	createFn                  func(ctx context.Context, user *model.User) error
	getByIDFn                 func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn              func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn           func(ctx context.Context, username string) (*model.User, error)
	existsByEmailOrUsernameFn func(ctx context.Context, email, username string) (bool, error)
	listFn                    func(ctx context.Context) ([]model.User, error)
	updateFn                  func(ctx context.Context, user *model.User) error
	updatePasswordFn          func(ctx context.Context, userID int64, passwordHashed string) error
	updateProfilePictureFn    func(ctx context.Context, userID int64, url string) error
	updateCoverImageFn        func(ctx context.Context, userID int64, url string) error
	setRefreshTokenFn         func(ctx context.Context, userID int64, token *string, issuedAt *time.Time) error

	createCalls          []*model.User
	setRefreshTokenCalls []setRefreshTokenCall
	updatePasswordCalls  []updatePasswordCall
}

type setRefreshTokenCall struct {
	UserID   int64
	Token    *string
	IssuedAt *time.Time
}

type updatePasswordCall struct {
	UserID         int64
	PasswordHashed string
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	if m.existsByEmailOrUsernameFn != nil {
		return m.existsByEmailOrUsernameFn(ctx, email, username)
	}
	return false, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error {
	m.updatePasswordCalls = append(m.updatePasswordCalls, updatePasswordCall{UserID: userID, PasswordHashed: passwordHashed})
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, passwordHashed)
	}
	return nil
}

func (m *mockUserRepository) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	if m.updateProfilePictureFn != nil {
		return m.updateProfilePictureFn(ctx, userID, url)
	}
	return nil
}

func (m *mockUserRepository) UpdateCoverImage(ctx context.Context, userID int64, url string) error {
	if m.updateCoverImageFn != nil {
		return m.updateCoverImageFn(ctx, userID, url)
	}
	return nil
}

func (m *mockUserRepository) SetRefreshToken(ctx context.Context, userID int64, token *string, issuedAt *time.Time) error {
	m.setRefreshTokenCalls = append(m.setRefreshTokenCalls, setRefreshTokenCall{UserID: userID, Token: token, IssuedAt: issuedAt})
	if m.setRefreshTokenFn != nil {
		return m.setRefreshTokenFn(ctx, userID, token, issuedAt)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	return nil
}

type mockFollowRepository struct {
	createFn           func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn           func(ctx context.Context, followerID, followeeID int64) error
	getFollowerIDsFn   func(ctx context.Context, userID int64) ([]int64, error)
	getFolloweeIDsFn   func(ctx context.Context, userID int64) ([]int64, error)
	deleteAllForUserFn func(ctx context.Context, userID int64) error

	deleteAllCalls []int64
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	m.deleteAllCalls = append(m.deleteAllCalls, userID)
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, userID)
	}
	return nil
}

type mockPostRepository struct {
	createFn               func(ctx context.Context, post *model.Post) error
	getByIDFn              func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn             func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	updateFn               func(ctx context.Context, post *model.Post) error
	deleteFn               func(ctx context.Context, postID int64) error
	getByUserIDsFn         func(ctx context.Context, userIDs []int64, limit int) ([]model.Post, error)
	getReactionsFn         func(ctx context.Context, postID int64) ([]model.Reaction, error)
	getReactionsForPostsFn func(ctx context.Context, postIDs []int64) (map[int64][]model.Reaction, error)
	getReactionForUpdateFn func(ctx context.Context, postID, userID int64) (*model.Reaction, error)

	createCalls         []*model.Post
	deleteCalls         []int64
	insertReactionCalls []reactionCall
	updateReactionCalls []reactionCall
	deleteReactionCalls []reactionCall
}

type reactionCall struct {
	PostID int64
	UserID int64
	Kind   string
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	m.createCalls = append(m.createCalls, post)
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	m.deleteCalls = append(m.deleteCalls, postID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) GetByUserIDs(ctx context.Context, userIDs []int64, limit int) ([]model.Post, error) {
	if m.getByUserIDsFn != nil {
		return m.getByUserIDsFn(ctx, userIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetReactions(ctx context.Context, postID int64) ([]model.Reaction, error) {
	if m.getReactionsFn != nil {
		return m.getReactionsFn(ctx, postID)
	}
	return []model.Reaction{}, nil
}

func (m *mockPostRepository) GetReactionsForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reaction, error) {
	if m.getReactionsForPostsFn != nil {
		return m.getReactionsForPostsFn(ctx, postIDs)
	}
	return map[int64][]model.Reaction{}, nil
}

func (m *mockPostRepository) GetReactionForUpdate(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (*model.Reaction, error) {
	if m.getReactionForUpdateFn != nil {
		return m.getReactionForUpdateFn(ctx, postID, userID)
	}
	return nil, nil
}

func (m *mockPostRepository) InsertReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error {
	m.insertReactionCalls = append(m.insertReactionCalls, reactionCall{PostID: postID, UserID: userID, Kind: kind})
	return nil
}

func (m *mockPostRepository) UpdateReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error {
	m.updateReactionCalls = append(m.updateReactionCalls, reactionCall{PostID: postID, UserID: userID, Kind: kind})
	return nil
}

func (m *mockPostRepository) DeleteReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	m.deleteReactionCalls = append(m.deleteReactionCalls, reactionCall{PostID: postID, UserID: userID})
	return nil
}

// mockTxRunner runs the transaction body directly. The repository mocks
// ignore their tx argument, so nil is fine here; runs and failures are
// recorded so tests can assert on transaction usage.
type mockTxRunner struct {
	failWith error
	runs     int
}

func (m *mockTxRunner) RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	m.runs++
	if m.failWith != nil {
		return m.failWith
	}
	return fn(nil)
}

// mockTimelineCache records cache traffic so tests can assert on the
// fan-out and invalidation behavior of the services.
type mockTimelineCache struct {
	existsFn      func(ctx context.Context, userID int64) (bool, error)
	getTimelineFn func(ctx context.Context, userID int64) ([]int64, error)
	addPostFn     func(ctx context.Context, userID, postID int64, timestamp int64) error

	addPostCalls    []addPostCall
	removePostCalls []removePostCall
	warmCalls       []warmCall
	invalidateCalls []int64
}

type addPostCall struct {
	UserID    int64
	PostID    int64
	Timestamp int64
}

type removePostCall struct {
	UserID int64
	PostID int64
}

type warmCall struct {
	UserID int64
	Posts  []cache.PostScore
}

func (m *mockTimelineCache) AddPost(ctx context.Context, userID, postID int64, timestamp int64) error {
	m.addPostCalls = append(m.addPostCalls, addPostCall{UserID: userID, PostID: postID, Timestamp: timestamp})
	if m.addPostFn != nil {
		return m.addPostFn(ctx, userID, postID, timestamp)
	}
	return nil
}

func (m *mockTimelineCache) RemovePost(ctx context.Context, userID, postID int64) error {
	m.removePostCalls = append(m.removePostCalls, removePostCall{UserID: userID, PostID: postID})
	return nil
}

func (m *mockTimelineCache) GetTimeline(ctx context.Context, userID int64) ([]int64, error) {
	if m.getTimelineFn != nil {
		return m.getTimelineFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTimelineCache) Warm(ctx context.Context, userID int64, posts []cache.PostScore) error {
	m.warmCalls = append(m.warmCalls, warmCall{UserID: userID, Posts: posts})
	return nil
}

func (m *mockTimelineCache) Invalidate(ctx context.Context, userID int64) error {
	m.invalidateCalls = append(m.invalidateCalls, userID)
	return nil
}

func (m *mockTimelineCache) Exists(ctx context.Context, userID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	return false, nil
}

// newTestTokenService builds a TokenService with known secrets and short
// lifetimes for use across the auth tests.
func newTestTokenService() *TokenService {
	return &TokenService{
		accessSecret:  []byte("test-access-secret"),
		refreshSecret: []byte("test-refresh-secret"),
		accessTTL:     15 * time.Minute,
		refreshTTL:    30 * 24 * time.Hour,
	}
}
