package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/session"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles signup, login and session endpoints.
type AuthHandler struct {
	upstream    Upstream
	sessions    *session.Manager
	engine      *ledger.Engine
	career      *career.Store
	signupGrant int64
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(up Upstream, sessions *session.Manager, engine *ledger.Engine, store *career.Store, signupGrant int64) *AuthHandler {
	return &AuthHandler{
		upstream:    up,
		sessions:    sessions,
		engine:      engine,
		career:      store,
		signupGrant: signupGrant,
	}
}

// signupRequest defines the request body for registration.
type signupRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneNumber    string `json:"phoneNumber" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	Location       string `json:"location" binding:"required"`
	Intro          string `json:"intro" binding:"required"`
	AgreeTerms     bool   `json:"agreeTerms" binding:"required"`
	AgreePrivacy   bool   `json:"agreePrivacy" binding:"required"`
	AgreeMarketing bool   `json:"agreeMarketing"`
}

var signupFieldMessages = map[string]string{
	"Name":         "이름을 입력해주세요",
	"Email":        "올바른 이메일을 입력해주세요",
	"PhoneNumber":  "휴대폰 번호를 입력해주세요",
	"Password":     "비밀번호는 8자 이상이어야 합니다",
	"Location":     "지역을 입력해주세요",
	"Intro":        "자기소개를 입력해주세요",
	"AgreeTerms":   "서비스 이용약관에 동의해주세요",
	"AgreePrivacy": "개인정보 수집 및 이용에 동의해주세요",
}

// loginRequest defines the request body for login.
type loginRequest struct {
	UserID   string `json:"userId" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var loginFieldMessages = map[string]string{
	"UserID":   "올바른 이메일을 입력해주세요",
	"Password": "비밀번호를 입력해주세요",
}

// Signup registers the user with the backend.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(errBind, signupFieldMessages)})
		return
	}

	errSignUp := h.upstream.SignUp(c.Request.Context(), upstream.SignUpRequest{
		Name:           strings.TrimSpace(body.Name),
		Email:          strings.TrimSpace(body.Email),
		PhoneNumber:    strings.TrimSpace(body.PhoneNumber),
		Password:       body.Password,
		Location:       strings.TrimSpace(body.Location),
		Intro:          strings.TrimSpace(body.Intro),
		AgreeTerms:     body.AgreeTerms,
		AgreePrivacy:   body.AgreePrivacy,
		AgreeMarketing: body.AgreeMarketing,
	})
	if errSignUp != nil {
		log.WithError(errSignUp).Warn("signup failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "회원가입 중 오류가 발생했습니다."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "회원가입이 완료되었습니다."})
}

// checkEmailRequest defines the request body for duplicate checks.
type checkEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CheckEmail reports whether the email is already registered.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var body checkEmailRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "올바른 이메일을 입력해주세요"})
		return
	}
	exists, errCheck := h.upstream.CheckEmail(c.Request.Context(), strings.TrimSpace(body.Email))
	if errCheck != nil {
		log.WithError(errCheck).Warn("check email failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "서버 오류"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Login authenticates against the backend and starts a session. The first
// login of a user also grants the welcome tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(errBind, loginFieldMessages)})
		return
	}

	ctx := c.Request.Context()
	email := strings.TrimSpace(body.UserID)
	result, errLogin := h.upstream.Login(ctx, email, body.Password)
	if errLogin != nil {
		var statusErr *upstream.StatusError
		if errors.As(errLogin, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "이메일 또는 비밀번호가 올바르지 않습니다."})
			return
		}
		log.WithError(errLogin).Warn("login failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "로그인 중 오류가 발생했습니다."})
		return
	}
	if result.Email != "" {
		email = result.Email
	}

	if _, errStart := h.sessions.Start(c, result.ID, email, result.Name, result.UserToken); errStart != nil {
		log.WithError(errStart).Error("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "로그인 중 오류가 발생했습니다."})
		return
	}

	if granted, errGrant := h.career.GrantSignupTokens(ctx, result.ID, h.signupGrant); errGrant != nil {
		log.WithError(errGrant).WithField("user_id", result.ID).Error("signup grant failed")
	} else if granted {
		log.WithField("user_id", result.ID).Info("signup tokens granted")
	}

	c.JSON(http.StatusOK, gin.H{"message": "로그인 성공"})
}

// Logout ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if errEnd := h.sessions.End(c); errEnd != nil {
		log.WithError(errEnd).Error("delete session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "로그아웃 중 오류가 발생했습니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "로그아웃되었습니다."})
}

// Me returns the session user with the current token balance.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	balance, errBalance := h.engine.Balance(c.Request.Context(), sess.UserID)
	if errBalance != nil {
		writeError(c, errBalance, "load balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     sess.UserID,
		"name":   sess.Name,
		"email":  sess.Email,
		"tokens": balance,
	})
}

// bindMessage turns the first validation failure into a user message.
func bindMessage(err error, messages map[string]string) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		if msg, ok := messages[validationErrs[0].Field()]; ok {
			return msg
		}
	}
	return "잘못된 요청입니다"
}
