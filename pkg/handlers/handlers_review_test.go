package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"devloop/pkg/apperr"
	"devloop/pkg/handlers"
	"devloop/pkg/review"
	"devloop/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) Create(ctx context.Context, sessionID, reviewerID string, rating int, comment string) (*review.Review, error) {
	args := m.Called(sessionID, reviewerID, rating, comment)
	if r := args.Get(0); r != nil {
		return r.(*review.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewService) GetBySession(ctx context.Context, sessionID string) ([]*review.Review, error) {
	args := m.Called(sessionID)
	return args.Get(0).([]*review.Review), args.Error(1)
}

func (m *mockReviewService) Update(ctx context.Context, id, requesterID string, rating int, comment string) (*review.Review, error) {
	args := m.Called(id, requesterID, rating, comment)
	if r := args.Get(0); r != nil {
		return r.(*review.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewService) Delete(ctx context.Context, id, requesterID string) error {
	return m.Called(id, requesterID).Error(0)
}

func TestReviewHandlers(t *testing.T) {
	m := new(mockReviewService)
	m.On("Create", "s1", "A", 5, "great").Return(&review.Review{ID: "r1", SessionID: "s1", Rating: 5}, nil)
	m.On("Create", "nope", "A", 4, "").Return(nil, apperr.NotFound("session", "nope"))
	m.On("GetBySession", "s1").Return([]*review.Review{{ID: "r1"}}, nil)
	m.On("Update", "r1", "M", 3, "").Return(nil, apperr.ErrForbidden)
	m.On("Delete", "r1", "A").Return(nil)
	handler := handlers.NewReviewHandler(m, logger)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"created", `{"sessionId":"s1","rating":5,"comment":"great"}`, http.StatusCreated},
		{"unknown session", `{"sessionId":"nope","rating":4}`, http.StatusNotFound},
		{"rating too high", `{"sessionId":"s1","rating":9}`, http.StatusBadRequest},
		{"rating missing", `{"sessionId":"s1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Create(rr, as(jsonRequest(http.MethodPost, "/api/reviews", tt.body), "A", user.RoleMentee))
			assert.Equal(t, tt.status, rr.Code)
		})
	}

	rr := httptest.NewRecorder()
	handler.ListBySession(rr, withVars(httptest.NewRequest(http.MethodGet, "/api/reviews/s1", nil), "sessionId", "s1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"r1"`)

	rr = httptest.NewRecorder()
	handler.Update(rr, withVars(as(jsonRequest(http.MethodPut, "/api/reviews/r1", `{"rating":3}`), "M", user.RoleMentor), "id", "r1"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	handler.Delete(rr, withVars(as(httptest.NewRequest(http.MethodDelete, "/api/reviews/r1", nil), "A", user.RoleMentee), "id", "r1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	m.AssertExpectations(t)
}
