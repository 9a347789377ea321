package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool

	// OnResponse, when set, receives the created account summary.
	OnResponse func(*UserSummary) `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	manager *SessionManager
}

func NewRegisterUserHandler(manager *SessionManager) *RegisterUserHandler {
	return &RegisterUserHandler{manager: manager}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	summary, err := h.manager.Register(ctx, Registration{
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Email:     event.Email,
		Phone:     event.Phone,
		Gender:    event.Gender,
		Password:  event.Password,
		Role:      UserRole(event.Role),
		UseHashid: event.UseHashid,
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(summary)
	}

	return nil
}
