package ratingController

import (
	"context"
	"errors"
	"sync"
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
	races map[int]*Race
}

func (f *fakeRaceRepo) GetForUpdate(_ context.Context, _ *gorm.DB, id int) (*Race, error) {
	race, ok := f.races[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return race, nil
}

type ratingKey struct {
	userID uuid.UUID
	raceID int
}

// fakeRatingRepo keeps ratings in memory and writes aggregates onto the
// races held by fakeRaceRepo.
type fakeRatingRepo struct {
	repositories.RatingRepository
	races   *fakeRaceRepo
	ratings map[ratingKey]*Rating
	nextID  int
}

func (f *fakeRatingRepo) Upsert(_ context.Context, _ *gorm.DB, rating *Rating) error {
	key := ratingKey{rating.UserID, rating.RaceID}
	if existing, ok := f.ratings[key]; ok {
		existing.Rating = rating.Rating
		existing.Review = rating.Review
		existing.Watched = rating.Watched
		*rating = *existing
		return nil
	}
	f.nextID++
	rating.ID = f.nextID
	stored := *rating
	f.ratings[key] = &stored
	return nil
}

func (f *fakeRatingRepo) GetByID(_ context.Context, _ *gorm.DB, id int) (*Rating, error) {
	for _, rating := range f.ratings {
		if rating.ID == id {
			copied := *rating
			return &copied, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeRatingRepo) Update(_ context.Context, _ *gorm.DB, rating *Rating) error {
	stored := *rating
	f.ratings[ratingKey{rating.UserID, rating.RaceID}] = &stored
	return nil
}

func (f *fakeRatingRepo) RecomputeRace(_ context.Context, _ *gorm.DB, raceID int) (RaceAggregate, error) {
	var aggregate RaceAggregate
	for key, rating := range f.ratings {
		if key.raceID == raceID {
			aggregate.Count++
			aggregate.Sum += int64(rating.Rating)
		}
	}
	race := f.races.races[raceID]
	race.AverageRating = aggregate.Average()
	race.RatingCount = int(aggregate.Count)
	return aggregate, nil
}

type fakeActivityRepo struct {
	repositories.ActivityRepository
	created []Activity
}

func (f *fakeActivityRepo) Create(_ context.Context, _ *gorm.DB, activity *Activity) error {
	f.created = append(f.created, *activity)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []Activity
}

func (p *recordingPublisher) PublishActivity(activity Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, activity)
	return nil
}

type fixture struct {
	controller *RatingController
	races      *fakeRaceRepo
	ratings    *fakeRatingRepo
	activities *fakeActivityRepo
	publisher  *recordingPublisher
}

func newFixture() *fixture {
	races := &fakeRaceRepo{races: map[int]*Race{42: {BaseModel: BaseModel{ID: 42}, Name: "Monaco Grand Prix"}}}
	ratings := &fakeRatingRepo{races: races, ratings: map[ratingKey]*Rating{}}
	activities := &fakeActivityRepo{}
	publisher := &recordingPublisher{}

	return &fixture{
		controller: &RatingController{
			raceRepo:     races,
			ratingRepo:   ratings,
			activityRepo: activities,
			transaction:  inlineTransactor{},
			eventBus:     publisher,
		},
		races:      races,
		ratings:    ratings,
		activities: activities,
		publisher:  publisher,
	}
}

func newUser() *User {
	return &User{BaseUUIDModel: BaseUUIDModel{ID: uuid.New()}, Username: "driver"}
}

func TestSubmitRating_AggregateScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u1, u2 := newUser(), newUser()
	race := f.races.races[42]

	_, err := f.controller.SubmitRating(ctx, u1, 42, SubmitRatingRequest{Rating: 8})
	require.NoError(t, err)
	assert.Equal(t, "8.00", race.AverageRating.String())
	assert.Equal(t, 1, race.RatingCount)

	_, err = f.controller.SubmitRating(ctx, u2, 42, SubmitRatingRequest{Rating: 10})
	require.NoError(t, err)
	assert.Equal(t, "9.00", race.AverageRating.String())
	assert.Equal(t, 2, race.RatingCount)

	resubmitted, err := f.controller.SubmitRating(ctx, u1, 42, SubmitRatingRequest{Rating: 6})
	require.NoError(t, err)
	assert.Equal(t, "8.00", race.AverageRating.String())
	assert.Equal(t, 2, race.RatingCount)
	assert.Equal(t, 6, resubmitted.Rating)
	assert.Len(t, f.ratings.ratings, 2)

	assert.Len(t, f.activities.created, 3)
	assert.Len(t, f.publisher.published, 3)
	assert.Equal(t, ActivityReview, f.publisher.published[2].Type)
	assert.Equal(t, 6, *f.publisher.published[2].Rating)
}

func TestSubmitRating_Validation(t *testing.T) {
	tests := []struct {
		name   string
		rating int
	}{
		{name: "zero", rating: 0},
		{name: "below range", rating: -1},
		{name: "above range", rating: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			rating, err := f.controller.SubmitRating(
				context.Background(), newUser(), 42, SubmitRatingRequest{Rating: tt.rating},
			)

			assert.Nil(t, rating)
			assert.ErrorIs(t, err, types.ErrValidation)

			var fieldErrs *types.FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Contains(t, fieldErrs.Fields, "rating")
			assert.Empty(t, f.ratings.ratings)
			assert.Empty(t, f.publisher.published)
		})
	}
}

func TestSubmitRating_CleansReview(t *testing.T) {
	f := newFixture()
	blank := "   "

	rating, err := f.controller.SubmitRating(
		context.Background(), newUser(), 42, SubmitRatingRequest{Rating: 5, Review: &blank},
	)

	require.NoError(t, err)
	assert.Nil(t, rating.Review)
}

func TestUpdateRating(t *testing.T) {
	ctx := context.Background()
	owner := newUser()

	setup := func(t *testing.T) (*fixture, *Rating) {
		f := newFixture()
		rating, err := f.controller.SubmitRating(ctx, owner, 42, SubmitRatingRequest{Rating: 4})
		require.NoError(t, err)
		return f, rating
	}

	t.Run("owner updates score", func(t *testing.T) {
		f, rating := setup(t)
		score := 9

		updated, err := f.controller.UpdateRating(ctx, owner, 42, rating.ID, UpdateRatingRequest{Rating: &score})

		require.NoError(t, err)
		assert.Equal(t, 9, updated.Rating)
		assert.Equal(t, "9.00", f.races.races[42].AverageRating.String())
	})

	t.Run("out of range score", func(t *testing.T) {
		f, rating := setup(t)
		score := 11

		_, err := f.controller.UpdateRating(ctx, owner, 42, rating.ID, UpdateRatingRequest{Rating: &score})

		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

type MockRaceRepository struct {
	repositories.RaceRepository
	mock.Mock
}

func (m *MockRaceRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*Race, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Race), args.Error(1)
}

type MockRatingRepository struct {
	repositories.RatingRepository
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	args := m.Called(ctx, tx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Rating, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rating), args.Error(1)
}

func (m *MockRatingRepository) Update(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	args := m.Called(ctx, tx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) RecomputeRace(ctx context.Context, tx *gorm.DB, raceID int) (RaceAggregate, error) {
	args := m.Called(ctx, tx, raceID)
	return args.Get(0).(RaceAggregate), args.Error(1)
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
	races      *MockRaceRepository
	ratings    *MockRatingRepository
	activities *MockActivityRepository
	publisher  *MockActivityPublisher
}

func newMockedController() (*RatingController, *mocks) {
	m := &mocks{
		races:      &MockRaceRepository{},
		ratings:    &MockRatingRepository{},
		activities: &MockActivityRepository{},
		publisher:  &MockActivityPublisher{},
	}
	return &RatingController{
		raceRepo:     m.races,
		ratingRepo:   m.ratings,
		activityRepo: m.activities,
		transaction:  inlineTransactor{},
		eventBus:     m.publisher,
	}, m
}

func (m *mocks) assertExpectations(t *testing.T) {
	m.races.AssertExpectations(t)
	m.ratings.AssertExpectations(t)
	m.activities.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestSubmitRating_MissingRace(t *testing.T) {
	controller, m := newMockedController()
	m.races.On("GetForUpdate", mock.Anything, mock.Anything, 7).Return(nil, types.ErrNotFound)

	rating, err := controller.SubmitRating(context.Background(), newUser(), 7, SubmitRatingRequest{Rating: 5})

	assert.Nil(t, rating)
	assert.ErrorIs(t, err, types.ErrNotFound)
	m.assertExpectations(t)
	m.ratings.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "PublishActivity", mock.Anything)
}

func TestSubmitRating_RecomputesOncePerSubmission(t *testing.T) {
	controller, m := newMockedController()
	user := newUser()

	m.races.On("GetForUpdate", mock.Anything, mock.Anything, 42).Return(&Race{BaseModel: BaseModel{ID: 42}}, nil)
	m.ratings.On("Upsert", mock.Anything, mock.Anything, mock.MatchedBy(func(r *Rating) bool {
		return r.UserID == user.ID && r.RaceID == 42 && r.Rating == 7
	})).Return(nil)
	m.ratings.On("RecomputeRace", mock.Anything, mock.Anything, 42).Return(RaceAggregate{Count: 1, Sum: 7}, nil).Once()
	m.activities.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(a *Activity) bool {
		return a.Type == ActivityReview && a.Rating != nil && *a.Rating == 7
	})).Return(nil)
	m.publisher.On("PublishActivity", mock.AnythingOfType("models.Activity")).Return(nil)

	_, err := controller.SubmitRating(context.Background(), user, 42, SubmitRatingRequest{Rating: 7})

	require.NoError(t, err)
	m.assertExpectations(t)
	m.ratings.AssertNumberOfCalls(t, "RecomputeRace", 1)
}

func TestSubmitRating_PublishFailureIsNotReturned(t *testing.T) {
	controller, m := newMockedController()

	m.races.On("GetForUpdate", mock.Anything, mock.Anything, 42).Return(&Race{BaseModel: BaseModel{ID: 42}}, nil)
	m.ratings.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.ratings.On("RecomputeRace", mock.Anything, mock.Anything, 42).Return(RaceAggregate{Count: 1, Sum: 5}, nil)
	m.activities.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.publisher.On("PublishActivity", mock.Anything).Return(errors.New("valkey unavailable"))

	rating, err := controller.SubmitRating(context.Background(), newUser(), 42, SubmitRatingRequest{Rating: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, rating.Rating)
	m.assertExpectations(t)
}

func TestSubmitRating_NoPublishWhenTransactionFails(t *testing.T) {
	controller, m := newMockedController()

	m.races.On("GetForUpdate", mock.Anything, mock.Anything, 42).Return(&Race{BaseModel: BaseModel{ID: 42}}, nil)
	m.ratings.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.ratings.On("RecomputeRace", mock.Anything, mock.Anything, 42).Return(RaceAggregate{Count: 1, Sum: 5}, nil)
	m.activities.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := controller.SubmitRating(context.Background(), newUser(), 42, SubmitRatingRequest{Rating: 5})

	assert.Error(t, err)
	m.assertExpectations(t)
	m.publisher.AssertNotCalled(t, "PublishActivity", mock.Anything)
}

func TestUpdateRating_Rejections(t *testing.T) {
	owner := newUser()
	score := 9

	tests := []struct {
		name     string
		caller   *User
		raceID   int
		stored   *Rating
		lookup   error
		expected error
	}{
		{
			name:     "other user is forbidden",
			caller:   newUser(),
			raceID:   42,
			stored:   &Rating{BaseModel: BaseModel{ID: 1}, UserID: owner.ID, RaceID: 42, Rating: 4},
			expected: types.ErrForbidden,
		},
		{
			name:     "rating for another race",
			caller:   owner,
			raceID:   43,
			stored:   &Rating{BaseModel: BaseModel{ID: 1}, UserID: owner.ID, RaceID: 42, Rating: 4},
			expected: types.ErrNotFound,
		},
		{
			name:     "unknown rating",
			caller:   owner,
			raceID:   42,
			lookup:   types.ErrNotFound,
			expected: types.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, m := newMockedController()

			m.races.On("GetForUpdate", mock.Anything, mock.Anything, tt.raceID).
				Return(&Race{BaseModel: BaseModel{ID: tt.raceID}}, nil)
			if tt.stored != nil {
				m.ratings.On("GetByID", mock.Anything, mock.Anything, 1).Return(tt.stored, nil)
			} else {
				m.ratings.On("GetByID", mock.Anything, mock.Anything, 1).Return(nil, tt.lookup)
			}

			_, err := controller.UpdateRating(context.Background(), tt.caller, tt.raceID, 1, UpdateRatingRequest{Rating: &score})

			assert.ErrorIs(t, err, tt.expected)
			m.assertExpectations(t)
			m.ratings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			m.ratings.AssertNotCalled(t, "RecomputeRace", mock.Anything, mock.Anything, mock.Anything)
			m.activities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			m.publisher.AssertNotCalled(t, "PublishActivity", mock.Anything)
		})
	}
}
