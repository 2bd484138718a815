package issue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/mq"
	"routeradar/internal/query"
	"routeradar/internal/repository"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) List(ctx context.Context, f query.IssueFilter) ([]model.Issue, error) {
	args := m.Called(ctx, f)
	if issues, ok := args.Get(0).([]model.Issue); ok {
		return issues, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, i *model.Issue) (string, error) {
	args := m.Called(ctx, i)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id string, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

func newService(store *mockStore, publisher *mockPublisher) *Service {
	return NewService(store, publisher, zap.NewNop())
}

func TestCreate_ServerAuthoritativeDefaults(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var inserted *model.Issue
	store.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*model.Issue)
	}).Return("abc", nil)
	publisher.On("Publish", mq.RouteIssueCreated, mock.Anything).Return(nil)

	// client tries to smuggle its own status/likes/comments
	in := &model.Issue{
		IssueText:    "Pothole",
		Category:     "bike",
		Neighborhood: "Dorchester",
		Status:       "resolved",
		Likes:        99,
		Comments:     []string{"nope"},
	}

	id, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "abc", id)

	require.Equal(t, "open", inserted.Status)
	require.Equal(t, 0, inserted.Likes)
	require.Equal(t, []string{}, inserted.Comments)
	require.NotEmpty(t, inserted.ID)
	require.False(t, inserted.CreatedAt.IsZero())
	require.Equal(t, inserted.CreatedAt, inserted.ModifiedAt)
	require.Nil(t, inserted.ProjectID)

	publisher.AssertCalled(t, "Publish", mq.RouteIssueCreated, mock.Anything)
}

func TestCreate_EmptyProjectIDNormalizedToNull(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var inserted *model.Issue
	store.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*model.Issue)
	}).Return("abc", nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	empty := ""
	_, err := svc.Create(context.Background(), &model.Issue{ProjectID: &empty})
	require.NoError(t, err)
	require.Nil(t, inserted.ProjectID)
}

func TestUpdate_LinkPublishesIssueLinked(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var sent map[string]any
	store.On("Update", mock.Anything, "i1", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(2).(map[string]any)
	}).Return(nil)
	publisher.On("Publish", mq.RouteIssueLinked, mock.Anything).Return(nil)

	err := svc.Update(context.Background(), "i1", map[string]any{"projectId": "P1"})
	require.NoError(t, err)

	pid, ok := sent["projectId"].(*string)
	require.True(t, ok)
	require.NotNil(t, pid)
	require.Equal(t, "P1", *pid)
	publisher.AssertCalled(t, "Publish", mq.RouteIssueLinked, mock.Anything)
}

func TestUpdate_UnlinkPublishesIssueUnlinked(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var sent map[string]any
	store.On("Update", mock.Anything, "i1", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(2).(map[string]any)
	}).Return(nil)
	publisher.On("Publish", mq.RouteIssueUnlinked, mock.Anything).Return(nil)

	err := svc.Update(context.Background(), "i1", map[string]any{"projectId": nil})
	require.NoError(t, err)

	pid, ok := sent["projectId"].(*string)
	require.True(t, ok)
	require.Nil(t, pid)
	publisher.AssertCalled(t, "Publish", mq.RouteIssueUnlinked, mock.Anything)
}

func TestUpdate_EmptyStringProjectIDMeansUnlink(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var sent map[string]any
	store.On("Update", mock.Anything, "i1", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(2).(map[string]any)
	}).Return(nil)
	publisher.On("Publish", mq.RouteIssueUnlinked, mock.Anything).Return(nil)

	err := svc.Update(context.Background(), "i1", map[string]any{"projectId": ""})
	require.NoError(t, err)

	pid, ok := sent["projectId"].(*string)
	require.True(t, ok)
	require.Nil(t, pid)
}

func TestUpdate_PlainPatchPublishesIssueUpdated(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	store.On("Update", mock.Anything, "i1", mock.Anything).Return(nil)
	publisher.On("Publish", mq.RouteIssueUpdated, mock.Anything).Return(nil)

	err := svc.Update(context.Background(), "i1", map[string]any{"status": "resolved"})
	require.NoError(t, err)
	publisher.AssertCalled(t, "Publish", mq.RouteIssueUpdated, mock.Anything)
}

func TestUpdate_RejectsBadPatches(t *testing.T) {
	store := new(mockStore)
	svc := newService(store, new(mockPublisher))

	cases := []map[string]any{
		{"bogus": "zzz"},
		{"projectId": 42},
		{"likes": "many"},
		{"likes": 1.5},
		{"comments": "not a list"},
		{"comments": []any{7}},
		{"status": 3},
	}

	for _, patch := range cases {
		err := svc.Update(context.Background(), "i1", patch)
		require.ErrorIs(t, err, ErrInvalidPatch, "patch %v", patch)
	}

	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ConvertsJSONNumbersAndComments(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	var sent map[string]any
	store.On("Update", mock.Anything, "i1", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(2).(map[string]any)
	}).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	err := svc.Update(context.Background(), "i1", map[string]any{
		"likes":    float64(3),
		"comments": []any{"first", "second"},
	})
	require.NoError(t, err)

	require.Equal(t, 3, sent["likes"])
	require.Equal(t, []string{"first", "second"}, sent["comments"])
}

func TestUpdate_NotFoundPassesThrough(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	store.On("Update", mock.Anything, "missing", mock.Anything).Return(repository.ErrNotFound)

	err := svc.Update(context.Background(), "missing", map[string]any{"status": "open"})
	require.ErrorIs(t, err, repository.ErrNotFound)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDelete_NotFoundPassesThrough(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	store.On("Delete", mock.Anything, "missing").Return(repository.ErrNotFound)

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDelete_PublishesIssueDeleted(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	store.On("Delete", mock.Anything, "i1").Return(nil)
	publisher.On("Publish", mq.RouteIssueDeleted, mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "i1"))
	publisher.AssertCalled(t, "Publish", mq.RouteIssueDeleted, mock.Anything)
}

func TestCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := new(mockStore)
	publisher := new(mockPublisher)
	svc := newService(store, publisher)

	store.On("Insert", mock.Anything, mock.Anything).Return("abc", nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(context.DeadlineExceeded)

	id, err := svc.Create(context.Background(), &model.Issue{IssueText: "x"})
	require.NoError(t, err)
	require.Equal(t, "abc", id)
}
