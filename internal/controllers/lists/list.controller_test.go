package listController

import (
	"context"
	"slices"
	"strings"
	"testing"

	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type inlineTransactor struct{}

func (inlineTransactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

type fakeRaceRepo struct {
	repositories.RaceRepository
}

func (fakeRaceRepo) Exists(_ context.Context, _ *gorm.DB, id int) (bool, error) {
	return id < 100, nil
}

type memoryListRepo struct {
	repositories.ListRepository
	lists   map[int]*List
	races   map[int][]int
	nextID  int
	private bool
}

func (m *memoryListRepo) Create(_ context.Context, _ *gorm.DB, list *List) error {
	m.nextID++
	list.ID = m.nextID
	m.lists[list.ID] = list
	return nil
}

func (m *memoryListRepo) GetByID(_ context.Context, _ *gorm.DB, id int) (*List, error) {
	list, ok := m.lists[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return list, nil
}

func (m *memoryListRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*List, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *memoryListRepo) Update(_ context.Context, _ *gorm.DB, list *List) error {
	m.lists[list.ID] = list
	return nil
}

func (m *memoryListRepo) Delete(_ context.Context, _ *gorm.DB, id int) error {
	delete(m.lists, id)
	delete(m.races, id)
	return nil
}

func (m *memoryListRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, includePrivate bool) ([]List, error) {
	m.private = includePrivate
	lists := []List{}
	for _, list := range m.lists {
		if list.UserID == userID && (includePrivate || list.IsPublic) {
			lists = append(lists, *list)
		}
	}
	return lists, nil
}

func (m *memoryListRepo) AddRace(_ context.Context, _ *gorm.DB, listID, raceID int) (bool, error) {
	if slices.Contains(m.races[listID], raceID) {
		return false, nil
	}
	m.races[listID] = append(m.races[listID], raceID)
	return true, nil
}

func (m *memoryListRepo) RemoveRace(_ context.Context, _ *gorm.DB, listID, raceID int) (bool, error) {
	index := slices.Index(m.races[listID], raceID)
	if index < 0 {
		return false, nil
	}
	m.races[listID] = slices.Delete(m.races[listID], index, index+1)
	return true, nil
}

func (m *memoryListRepo) LockRaceIDs(_ context.Context, _ *gorm.DB, listID int) ([]int, error) {
	return slices.Clone(m.races[listID]), nil
}

func (m *memoryListRepo) SetRaceOrder(_ context.Context, _ *gorm.DB, listID int, raceIDs []int) error {
	m.races[listID] = slices.Clone(raceIDs)
	return nil
}

func (m *memoryListRepo) ListRaces(_ context.Context, _ *gorm.DB, listID int) ([]Race, error) {
	races := []Race{}
	for _, id := range m.races[listID] {
		races = append(races, Race{BaseModel: BaseModel{ID: id}})
	}
	return races, nil
}

type fakeActivityRepo struct {
	repositories.ActivityRepository
	created []Activity
}

func (f *fakeActivityRepo) Create(_ context.Context, _ *gorm.DB, activity *Activity) error {
	f.created = append(f.created, *activity)
	return nil
}

func setup() (*ListController, *memoryListRepo, *fakeActivityRepo) {
	lists := &memoryListRepo{lists: map[int]*List{}, races: map[int][]int{}}
	activities := &fakeActivityRepo{}
	return &ListController{
		listRepo:     lists,
		raceRepo:     fakeRaceRepo{},
		activityRepo: activities,
		transaction:  inlineTransactor{},
	}, lists, activities
}

func newUser() *User {
	return &User{BaseUUIDModel: BaseUUIDModel{ID: uuid.New()}}
}

func TestCreateList(t *testing.T) {
	controller, _, _ := setup()
	owner := newUser()

	list, err := controller.CreateList(context.Background(), owner, CreateListRequest{Name: "Wet races"})

	require.NoError(t, err)
	assert.Equal(t, owner.ID, list.UserID)
	assert.True(t, list.IsPublic)
}

func TestCreateList_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreateListRequest
		field   string
	}{
		{name: "missing name", request: CreateListRequest{}, field: "name"},
		{name: "long name", request: CreateListRequest{Name: strings.Repeat("x", 101)}, field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, lists, _ := setup()

			_, err := controller.CreateList(context.Background(), newUser(), tt.request)

			var fieldErrs *types.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Contains(t, fieldErrs.Fields, tt.field)
			assert.Empty(t, lists.lists)
		})
	}
}

func TestListVisibility(t *testing.T) {
	ctx := context.Background()
	controller, _, _ := setup()
	owner, other := newUser(), newUser()
	private := false

	list, err := controller.CreateList(ctx, owner, CreateListRequest{Name: "Secret", IsPublic: &private})
	require.NoError(t, err)

	_, err = controller.GetList(ctx, other, list.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = controller.GetList(ctx, nil, list.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = controller.GetListRaces(ctx, other, list.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	visible, err := controller.GetList(ctx, owner, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.ID, visible.ID)
}

func TestGetUserLists_PrivateOnlyForOwner(t *testing.T) {
	ctx := context.Background()
	controller, lists, _ := setup()
	owner := newUser()
	private := false

	_, err := controller.CreateList(ctx, owner, CreateListRequest{Name: "Public"})
	require.NoError(t, err)
	_, err = controller.CreateList(ctx, owner, CreateListRequest{Name: "Private", IsPublic: &private})
	require.NoError(t, err)

	own, err := controller.GetUserLists(ctx, owner, owner.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)
	assert.True(t, lists.private)

	public, err := controller.GetUserLists(ctx, newUser(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	anonymous, err := controller.GetUserLists(ctx, nil, owner.ID)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)
}

func TestListRaces_AddRemoveReorder(t *testing.T) {
	ctx := context.Background()
	controller, lists, activities := setup()
	owner := newUser()

	list, err := controller.CreateList(ctx, owner, CreateListRequest{Name: "Best of 2024"})
	require.NoError(t, err)

	require.NoError(t, controller.AddRace(ctx, owner, list.ID, 1))
	require.NoError(t, controller.AddRace(ctx, owner, list.ID, 2))
	require.NoError(t, controller.AddRace(ctx, owner, list.ID, 1), "re-adding is a no-op")
	assert.Equal(t, []int{1, 2}, lists.races[list.ID])

	assert.ErrorIs(t, controller.AddRace(ctx, owner, list.ID, 500), types.ErrNotFound)

	assert.ErrorIs(t, controller.ReorderRaces(ctx, owner, list.ID, []int{2}), types.ErrValidation)
	assert.Equal(t, []int{1, 2}, lists.races[list.ID])

	require.NoError(t, controller.ReorderRaces(ctx, owner, list.ID, []int{2, 1}))
	assert.Equal(t, []int{2, 1}, lists.races[list.ID])

	require.NoError(t, controller.RemoveRace(ctx, owner, list.ID, 2))
	require.NoError(t, controller.RemoveRace(ctx, owner, list.ID, 2), "removing a non-member is a no-op")
	assert.Equal(t, []int{1}, lists.races[list.ID])

	require.Len(t, activities.created, 3)
	assert.Equal(t, ActivityListAdd, activities.created[0].Type)
	assert.Equal(t, ActivityListAdd, activities.created[1].Type)
	assert.Equal(t, ActivityListRemove, activities.created[2].Type)
	assert.Equal(t, owner.ID, activities.created[2].UserID)
	assert.Equal(t, list.ID, *activities.created[2].ListID)

	require.NoError(t, controller.DeleteList(ctx, owner, list.ID))
	assert.Empty(t, lists.races[list.ID])
}

type MockListRepository struct {
	repositories.ListRepository
	mock.Mock
}

func (m *MockListRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*List, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*List), args.Error(1)
}

func (m *MockListRepository) AddRace(ctx context.Context, tx *gorm.DB, listID, raceID int) (bool, error) {
	args := m.Called(ctx, tx, listID, raceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockListRepository) RemoveRace(ctx context.Context, tx *gorm.DB, listID, raceID int) (bool, error) {
	args := m.Called(ctx, tx, listID, raceID)
	return args.Bool(0), args.Error(1)
}

type MockRaceRepository struct {
	repositories.RaceRepository
	mock.Mock
}

func (m *MockRaceRepository) Exists(ctx context.Context, tx *gorm.DB, id int) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, tx *gorm.DB, activity *Activity) error {
	args := m.Called(ctx, tx, activity)
	return args.Error(0)
}

type MockActivityPublisher struct {
	mock.Mock
}

func (m *MockActivityPublisher) PublishActivity(activity Activity) error {
	args := m.Called(activity)
	return args.Error(0)
}

type mocks struct {
	lists      *MockListRepository
	races      *MockRaceRepository
	activities *MockActivityRepository
	publisher  *MockActivityPublisher
}

func newMockedController() (*ListController, *mocks) {
	m := &mocks{
		lists:      &MockListRepository{},
		races:      &MockRaceRepository{},
		activities: &MockActivityRepository{},
		publisher:  &MockActivityPublisher{},
	}
	return &ListController{
		listRepo:     m.lists,
		raceRepo:     m.races,
		activityRepo: m.activities,
		transaction:  inlineTransactor{},
		eventBus:     m.publisher,
	}, m
}

func TestListOwnership(t *testing.T) {
	owner, other := newUser(), newUser()
	name := "Stolen"

	operations := []struct {
		name string
		call func(c *ListController, user *User, listID int) error
	}{
		{"update", func(c *ListController, user *User, listID int) error {
			_, err := c.UpdateList(context.Background(), user, listID, UpdateListRequest{Name: &name})
			return err
		}},
		{"delete", func(c *ListController, user *User, listID int) error {
			return c.DeleteList(context.Background(), user, listID)
		}},
		{"add race", func(c *ListController, user *User, listID int) error {
			return c.AddRace(context.Background(), user, listID, 1)
		}},
		{"remove race", func(c *ListController, user *User, listID int) error {
			return c.RemoveRace(context.Background(), user, listID, 1)
		}},
		{"reorder", func(c *ListController, user *User, listID int) error {
			return c.ReorderRaces(context.Background(), user, listID, []int{1})
		}},
	}

	cases := []struct {
		name     string
		caller   *User
		stored   *List
		expected error
	}{
		{
			name:     "other user",
			caller:   other,
			stored:   &List{BaseModel: BaseModel{ID: 5}, UserID: owner.ID, Name: "Classics"},
			expected: types.ErrForbidden,
		},
		{name: "missing list", caller: owner, expected: types.ErrNotFound},
	}

	for _, op := range operations {
		for _, tc := range cases {
			t.Run(op.name+"/"+tc.name, func(t *testing.T) {
				controller, m := newMockedController()
				if tc.stored != nil {
					m.lists.On("GetForUpdate", mock.Anything, mock.Anything, 5).Return(tc.stored, nil)
				} else {
					m.lists.On("GetForUpdate", mock.Anything, mock.Anything, 5).Return(nil, types.ErrNotFound)
				}

				err := op.call(controller, tc.caller, 5)

				assert.ErrorIs(t, err, tc.expected)
				m.lists.AssertExpectations(t)
				m.races.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
				m.lists.AssertNotCalled(t, "AddRace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				m.lists.AssertNotCalled(t, "RemoveRace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				m.activities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				m.publisher.AssertNotCalled(t, "PublishActivity", mock.Anything)
			})
		}
	}
}

func TestAddRace_ActivityForOwner(t *testing.T) {
	owner := newUser()
	list := &List{BaseModel: BaseModel{ID: 5}, UserID: owner.ID}

	tests := []struct {
		name       string
		added      bool
		publishErr error
		wantWrite  bool
	}{
		{name: "new member", added: true, wantWrite: true},
		{name: "publish failure is swallowed", added: true, publishErr: assert.AnError, wantWrite: true},
		{name: "existing member", added: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, m := newMockedController()
			m.lists.On("GetForUpdate", mock.Anything, mock.Anything, 5).Return(list, nil)
			m.races.On("Exists", mock.Anything, mock.Anything, 9).Return(true, nil)
			m.lists.On("AddRace", mock.Anything, mock.Anything, 5, 9).Return(tt.added, nil)

			isListAdd := mock.MatchedBy(func(a *Activity) bool {
				return a.Type == ActivityListAdd && a.UserID == owner.ID && *a.ListID == 5 && *a.RaceID == 9
			})
			if tt.wantWrite {
				m.activities.On("Create", mock.Anything, mock.Anything, isListAdd).Return(nil)
				m.publisher.On("PublishActivity", mock.Anything).Return(tt.publishErr)
			}

			err := controller.AddRace(context.Background(), owner, 5, 9)

			require.NoError(t, err)
			m.lists.AssertExpectations(t)
			m.races.AssertExpectations(t)
			m.activities.AssertExpectations(t)
			m.publisher.AssertExpectations(t)
			if !tt.wantWrite {
				m.activities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				m.publisher.AssertNotCalled(t, "PublishActivity", mock.Anything)
			}
		})
	}
}

func TestAddRace_MissingRace(t *testing.T) {
	owner := newUser()
	controller, m := newMockedController()
	m.lists.On("GetForUpdate", mock.Anything, mock.Anything, 5).
		Return(&List{BaseModel: BaseModel{ID: 5}, UserID: owner.ID}, nil)
	m.races.On("Exists", mock.Anything, mock.Anything, 500).Return(false, nil)

	err := controller.AddRace(context.Background(), owner, 5, 500)

	assert.ErrorIs(t, err, types.ErrNotFound)
	m.races.AssertExpectations(t)
	m.lists.AssertNotCalled(t, "AddRace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
