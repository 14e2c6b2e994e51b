package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/srs"
)

var (
	testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testKey = models.ItemKey{UserID: "u1", Language: "ja", ItemID: "taberu"}
)

const itemPath = "/users/u1/languages/ja/items/taberu"

type HandlerSuite struct {
	suite.Suite
	reviews *mockReviewService
	queues  *mockQueueService
	stats   *mockStatsService
	server  *Server
	handler http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.reviews = new(mockReviewService)
	s.queues = new(mockQueueService)
	s.stats = new(mockStatsService)
	s.server = &Server{
		ReviewService: s.reviews,
		QueueService:  s.queues,
		StatsService:  s.stats,
	}
	s.handler = s.server.Routes()
}

func (s *HandlerSuite) TearDownTest() {
	s.reviews.AssertExpectations(s.T())
	s.queues.AssertExpectations(s.T())
	s.stats.AssertExpectations(s.T())
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	body := s.decode(rec)
	detail, ok := body["error"].(map[string]any)
	s.Require().True(ok, "missing error object: %s", rec.Body.String())
	return detail["code"].(string)
}

func reviewedItem() models.StoredItem {
	return models.StoredItem{
		ID:       1,
		UserID:   "u1",
		Language: "ja",
		ReviewableItem: models.ReviewableItem{
			ItemID:         "taberu",
			ItemType:       models.ItemTypeVocabulary,
			Interval:       6,
			EaseFactor:     2.5,
			Repetitions:    2,
			QualityHistory: []int{4, 5},
			LastReviewedAt: testNow,
			DueAt:          testNow.Add(6 * srs.Day),
		},
		Version: 2,
	}
}

func (s *HandlerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get(requestIDHeader))
}

func (s *HandlerSuite) TestReady() {
	rec := s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusOK, rec.Code)

	s.server.DB = mockPinger{err: stderrors.New("database is closed")}
	rec = s.do(http.MethodGet, "/readyz", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *HandlerSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal("abc-123", rec.Header().Get(requestIDHeader))
}

func (s *HandlerSuite) TestReviewWithQuality() {
	s.reviews.On("SubmitReview", mock.Anything, services.ReviewRequest{
		Key:          testKey,
		ItemType:     models.ItemTypeVocabulary,
		Quality:      5,
		ResponseTime: 1200 * time.Millisecond,
	}).Return(&services.ReviewResult{
		Item:     reviewedItem(),
		Quality:  5,
		Priority: srs.PriorityLater,
		Mastery:  srs.MasteryLearning,
	}, nil)

	rec := s.do(http.MethodPost, itemPath+"/review", `{"item_type":"vocabulary","quality":5,"response_ms":1200}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	item := body["item"].(map[string]any)
	s.Equal("taberu", item["item_id"])
	s.Equal(float64(6), item["interval"])
	s.Equal(float64(testNow.Add(6*srs.Day).UnixMilli()), item["due_at_ms"])
	s.Equal(float64(testNow.UnixMilli()), item["last_reviewed_at_ms"])
	s.Equal("learning", body["mastery"])
}

func (s *HandlerSuite) TestReviewWithResponse() {
	s.reviews.On("SubmitResponse", mock.Anything, services.ResponseRequest{
		Key:          testKey,
		Correct:      true,
		ResponseTime: 2500 * time.Millisecond,
		Difficulty:   "easy",
	}).Return(&services.ReviewResult{Item: reviewedItem(), Quality: 4}, nil)

	rec := s.do(http.MethodPost, itemPath+"/review", `{"correct":true,"response_ms":2500,"difficulty":"easy"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(float64(4), s.decode(rec)["quality"])
}

func (s *HandlerSuite) TestReviewRejectsBadBodies() {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty body", "", errors.ErrCodeBadRequest},
		{"malformed", `{"quality":`, errors.ErrCodeBadRequest},
		{"unknown field", `{"quality":3,"grade":3}`, errors.ErrCodeBadRequest},
		{"neither quality nor correct", `{"item_type":"kanji"}`, errors.ErrCodeBadRequest},
		{"both quality and correct", `{"quality":3,"correct":true}`, errors.ErrCodeBadRequest},
		{"quality too high", `{"quality":6}`, errors.ErrCodeValidation},
		{"quality negative", `{"quality":-1}`, errors.ErrCodeValidation},
		{"unknown item type", `{"item_type":"phonics","quality":3}`, errors.ErrCodeValidation},
		{"unknown difficulty", `{"correct":true,"difficulty":"hard"}`, errors.ErrCodeValidation},
		{"negative response time", `{"quality":3,"response_ms":-5}`, errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, itemPath+"/review", tt.body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
			s.Equal(tt.code, s.errorCode(rec))
			s.Equal("application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func (s *HandlerSuite) TestReviewMapsServiceErrors() {
	s.reviews.On("SubmitReview", mock.Anything, mock.Anything).
		Return(nil, errors.NewConflictError("review item", "taberu", nil))

	rec := s.do(http.MethodPost, itemPath+"/review", `{"quality":3}`)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(errors.ErrCodeConflict, s.errorCode(rec))
}

func (s *HandlerSuite) TestUnknownErrorsBecomeInternal() {
	s.reviews.On("GetItem", mock.Anything, testKey).Return(nil, stderrors.New("boom"))

	rec := s.do(http.MethodGet, itemPath, "")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(errors.ErrCodeInternal, s.errorCode(rec))
	s.NotContains(rec.Body.String(), "boom")
}

func (s *HandlerSuite) TestGetItem() {
	s.reviews.On("GetItem", mock.Anything, testKey).Return(&services.ItemStatus{
		Item:     reviewedItem(),
		Due:      false,
		Priority: srs.PriorityLater,
		Mastery:  srs.MasteryLearning,
		Recent: []models.ReviewHistory{
			{Quality: 5, ResponseMs: 900, ReviewedAt: testNow},
		},
	}, nil)

	rec := s.do(http.MethodGet, itemPath, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal(false, body["due"])
	recent := body["recent"].([]any)
	s.Require().Len(recent, 1)
	s.Equal(float64(testNow.UnixMilli()), recent[0].(map[string]any)["reviewed_at_ms"])
}

func (s *HandlerSuite) TestGetItemNotFound() {
	s.reviews.On("GetItem", mock.Anything, testKey).Return(nil, errors.NewNotFoundError("review item", "taberu"))

	rec := s.do(http.MethodGet, itemPath, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(errors.ErrCodeNotFound, s.errorCode(rec))
}

func (s *HandlerSuite) TestResetItem() {
	reset := reviewedItem()
	reset.Repetitions = 0
	reset.Interval = 1
	reset.QualityHistory = []int{}
	reset.LastReviewedAt = time.Time{}
	reset.DueAt = testNow
	s.reviews.On("ResetItem", mock.Anything, testKey).Return(&services.ItemStatus{
		Item:     reset,
		Due:      true,
		Priority: srs.PriorityNew,
		Mastery:  srs.MasteryNew,
	}, nil)

	rec := s.do(http.MethodPost, itemPath+"/reset", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal("new", body["mastery"])
	item := body["item"].(map[string]any)
	s.NotContains(item, "last_reviewed_at")
	s.Equal(float64(testNow.UnixMilli()), item["due_at_ms"])
}

func (s *HandlerSuite) TestListItems() {
	s.reviews.On("ListItems", mock.Anything, services.ListItemsRequest{
		UserID:    "u1",
		Language:  "ja",
		ItemTypes: []models.ItemType{models.ItemTypeVocabulary},
		DueOnly:   true,
		Limit:     1,
		Offset:    2,
	}).Return(&services.ItemPage{
		Items: []services.ItemStatus{
			{Item: reviewedItem(), Priority: srs.PriorityLater, Mastery: srs.MasteryLearning},
		},
		Total:  3,
		Limit:  1,
		Offset: 2,
	}, nil)

	rec := s.do(http.MethodGet, "/users/u1/languages/ja/items?types=vocabulary&due=true&limit=1&offset=2", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	s.Equal(float64(3), body["total"])
	s.Equal(float64(2), body["offset"])
	items := body["items"].([]any)
	s.Require().Len(items, 1)
	first := items[0].(map[string]any)
	s.Equal("taberu", first["item"].(map[string]any)["item_id"])
	s.Equal([]any{}, first["recent"])
}

func (s *HandlerSuite) TestListItemsRejectsBadParams() {
	for _, query := range []string{
		"types=phonics",
		"due=maybe",
		"limit=ten",
		"offset=-",
	} {
		s.Run(query, func() {
			rec := s.do(http.MethodGet, "/users/u1/languages/ja/items?"+query, "")
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *HandlerSuite) TestRemoveItem() {
	s.reviews.On("RemoveItem", mock.Anything, testKey).Return(nil)

	rec := s.do(http.MethodDelete, itemPath, "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.String())
}

func (s *HandlerSuite) TestQueue() {
	newLimit := 5
	s.queues.On("GetQueue", mock.Anything, "u1", "ja", services.QueueOptions{
		ItemTypes:          []models.ItemType{models.ItemTypeVocabulary, models.ItemTypeKanji},
		DailyNewItemsLimit: &newLimit,
		Candidates: []models.ReviewableItem{
			{ItemID: "mizu", ItemType: models.ItemTypeKanji},
		},
	}).Return(&srs.Queue{
		Entries: []srs.QueueEntry{
			{Item: models.ReviewableItem{ItemID: "mizu", ItemType: models.ItemTypeKanji}, Priority: 100, Mastery: srs.MasteryNew, IsNew: true},
			{Item: reviewedItem().ReviewableItem, Priority: 90, Mastery: srs.MasteryLearning},
		},
		ByModule: map[models.ItemType]int{models.ItemTypeKanji: 1, models.ItemTypeVocabulary: 1},
		TotalDue: 2,
		NewCount: 1,
		Ready:    true,
	}, nil)

	rec := s.do(http.MethodGet, "/users/u1/languages/ja/queue?types=vocabulary,Kanji&new_limit=5&new=kanji:mizu", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	entries := body["entries"].([]any)
	s.Require().Len(entries, 2)
	first := entries[0].(map[string]any)
	s.Equal(true, first["is_new"])
	firstItem := first["item"].(map[string]any)
	s.NotContains(firstItem, "last_reviewed_at", "unreviewed items have no review time")
	s.NotContains(firstItem, "due_at", "unscheduled items have no due time")
	s.NotContains(firstItem, "due_at_ms")
	second := entries[1].(map[string]any)["item"].(map[string]any)
	s.Equal(float64(testNow.Add(6*srs.Day).UnixMilli()), second["due_at_ms"])
	s.Equal(true, body["ready"])
	s.Equal(float64(1), body["by_module"].(map[string]any)["kanji"])
}

func (s *HandlerSuite) TestQueueRejectsBadParams() {
	for _, query := range []string{
		"types=phonics",
		"new_limit=lots",
		"review_limit=1.5",
		"new=kanji",
		"new=phonics:x",
	} {
		s.Run(query, func() {
			rec := s.do(http.MethodGet, "/users/u1/languages/ja/queue?"+query, "")
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *HandlerSuite) TestStats() {
	s.stats.On("Summary", mock.Anything, "u1", "ja").Return(&models.ReviewStats{
		TotalItems: 3,
		DueNow:     1,
		ByMastery:  map[string]int{"new": 1, "learning": 2},
	}, nil)

	rec := s.do(http.MethodGet, "/users/u1/languages/ja/stats", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal(float64(3), body["total_items"])
	s.Equal(float64(2), body["by_mastery"].(map[string]any)["learning"])
}

func (s *HandlerSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(errors.ErrCodeNotFound, s.errorCode(rec))
}

func (s *HandlerSuite) TestPanicIsRecovered() {
	s.reviews.On("RemoveItem", mock.Anything, testKey).Panic("kaboom")

	rec := s.do(http.MethodDelete, itemPath, "")
	s.Equal(http.StatusInternalServerError, rec.Code)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func TestParseCandidates(t *testing.T) {
	got, err := parseCandidates(" vocabulary:taberu , KANJI:水,")
	require.NoError(t, err)
	assert.Equal(t, []models.ReviewableItem{
		{ItemID: "taberu", ItemType: models.ItemTypeVocabulary},
		{ItemID: "水", ItemType: models.ItemTypeKanji},
	}, got)

	got, err = parseCandidates("")
	require.NoError(t, err)
	assert.Nil(t, got)
}
