package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

type stubUserService struct {
	registerFn           func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	verifyEmailFn        func(ctx context.Context, token string) (*domain.User, error)
	getUserFn            func(ctx context.Context, id string) (*domain.User, error)
	listUsersFn          func(ctx context.Context) ([]*domain.User, error)
	updateProfileFn      func(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error)
	updateRoleFn         func(ctx context.Context, id string, role domain.UserRole) (*domain.User, error)
	deleteUserFn         func(ctx context.Context, id string) error
	subscribeSubjectFn   func(ctx context.Context, userID, subjectID string) (*domain.User, error)
	unsubscribeSubjectFn func(ctx context.Context, userID, subjectID string) (*domain.User, error)
	subscribeJourneyFn   func(ctx context.Context, userID, journeyID string) (*domain.User, error)
	unsubscribeJourneyFn func(ctx context.Context, userID, journeyID string) (*domain.User, error)
	completeTrailFn      func(ctx context.Context, userID, trailID string) (*domain.User, error)
	subscribedSubjectsFn func(ctx context.Context, userID string) ([]string, error)
	subscribedJourneysFn func(ctx context.Context, userID string) ([]string, error)
	completedTrailsFn    func(ctx context.Context, userID string) ([]string, error)
}

func (s *stubUserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubUserService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	return s.verifyEmailFn(ctx, token)
}

func (s *stubUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, update)
}

func (s *stubUserService) UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	return s.updateRoleFn(ctx, id, role)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteUserFn(ctx, id)
}

func (s *stubUserService) SubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error) {
	return s.subscribeSubjectFn(ctx, userID, subjectID)
}

func (s *stubUserService) UnsubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error) {
	return s.unsubscribeSubjectFn(ctx, userID, subjectID)
}

func (s *stubUserService) SubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error) {
	return s.subscribeJourneyFn(ctx, userID, journeyID)
}

func (s *stubUserService) UnsubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error) {
	return s.unsubscribeJourneyFn(ctx, userID, journeyID)
}

func (s *stubUserService) CompleteTrail(ctx context.Context, userID, trailID string) (*domain.User, error) {
	return s.completeTrailFn(ctx, userID, trailID)
}

func (s *stubUserService) SubscribedSubjects(ctx context.Context, userID string) ([]string, error) {
	return s.subscribedSubjectsFn(ctx, userID)
}

func (s *stubUserService) SubscribedJourneys(ctx context.Context, userID string) ([]string, error) {
	return s.subscribedJourneysFn(ctx, userID)
}

func (s *stubUserService) CompletedTrails(ctx context.Context, userID string) ([]string, error) {
	return s.completedTrailsFn(ctx, userID)
}

func TestUserHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Email != "bob@example.com" || input.Username != "bob" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "u2", Name: input.Name, Email: input.Email, Username: input.Username}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/users", `{"name":"Bob","email":"bob@example.com","username":"bob","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message == "" {
		t.Fatalf("expected confirmation message")
	}
}

func TestUserHandler_Register_DuplicateAccount(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateAccount
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/users", `{"name":"Bob","email":"bob@example.com","username":"bob","password":"secret1"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestUserHandler_Register_WeakPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonContext(e, http.MethodPost, "/users", `{"name":"Bob","email":"bob@example.com","username":"bob","password":"nodigits"}`)
	err := handler.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Verify_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		verifyEmailFn: func(ctx context.Context, token string) (*domain.User, error) {
			if token != "vt-1" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &domain.User{ID: "u1", IsVerified: true}, nil
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/verify?token=vt-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Verify_UnknownToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		verifyEmailFn: func(ctx context.Context, token string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/verify?token=stale", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Verify(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_List_StripsSensitiveFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		listUsersFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin},
				{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleStudent},
			}, nil
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp))
	}
	for _, u := range resp {
		if _, leaked := u["password"]; leaked {
			t.Fatalf("password leaked: %+v", u)
		}
		if _, leaked := u["verificationToken"]; leaked {
			t.Fatalf("verification token leaked: %+v", u)
		}
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		getUserFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	if err := handler.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_UpdateProfile_PartialUpdate(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateProfileFn: func(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("unexpected id: %s", id)
			}
			if update.Name == nil || *update.Name != "New Name" {
				t.Fatalf("expected name update, got %+v", update)
			}
			if update.Email != nil || update.Username != nil {
				t.Fatalf("expected untouched fields to stay nil: %+v", update)
			}
			return &domain.User{ID: id, Name: *update.Name}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPatch, "/users", `{"name":"New Name"}`)
	c.Set("user_id", "u1")

	if err := handler.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateRole_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateRoleFn: func(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
			if id != "u2" || role != domain.RoleAdmin {
				t.Fatalf("unexpected args: %s %s", id, role)
			}
			return &domain.User{ID: id, Role: role}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPatch, "/users/u2/role", `{"role":"admin"}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if err := handler.UpdateRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateRole_InvalidRole(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		updateRoleFn: func(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonContext(e, http.MethodPatch, "/users/u2/role", `{"role":"superuser"}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	err := handler.UpdateRole(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Delete_Success(t *testing.T) {
	e := newTestEcho()
	deleted := ""
	stub := &stubUserService{
		deleteUserFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/users/u2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != "u2" {
		t.Fatalf("expected u2 deleted, got %q", deleted)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestUserHandler_SubscribeSubject_UsesAuthenticatedUser(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		subscribeSubjectFn: func(ctx context.Context, userID, subjectID string) (*domain.User, error) {
			if userID != "u1" || subjectID != "math" {
				t.Fatalf("unexpected args: %s %s", userID, subjectID)
			}
			return &domain.User{ID: userID, SubscribedSubjects: []string{"math"}}, nil
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/me/subjects/math", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("subjectId")
	c.SetParamValues("math")
	c.Set("user_id", "u1")

	if err := handler.SubscribeSubject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	subjects, ok := resp["subscribedSubjects"].([]any)
	if !ok || len(subjects) != 1 || subjects[0] != "math" {
		t.Fatalf("unexpected subjects: %+v", resp)
	}
}

func TestUserHandler_SubscribeSubject_AlreadySubscribed(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		subscribeSubjectFn: func(ctx context.Context, userID, subjectID string) (*domain.User, error) {
			return nil, domain.ErrAlreadySubscribed
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/me/subjects/math", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("subjectId")
	c.SetParamValues("math")
	c.Set("user_id", "u1")

	if err := handler.SubscribeSubject(c); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestUserHandler_CompleteTrail_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/me/trails/t1/complete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("trailId")
	c.SetParamValues("t1")

	err := handler.CompleteTrail(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_SubscribedSubjects_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubUserService{})

	req := httptest.NewRequest(http.MethodGet, "/me/subjects", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.SubscribedSubjects(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_SubscribedSubjects_EmptyListNotNull(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		subscribedSubjectsFn: func(ctx context.Context, userID string) ([]string, error) {
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/me/subjects", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")

	if err := handler.SubscribedSubjects(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp idListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.IDs == nil || len(resp.IDs) != 0 {
		t.Fatalf("expected empty list, got %+v", resp.IDs)
	}
}
