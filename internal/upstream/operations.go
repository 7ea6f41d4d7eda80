package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// SignUpRequest is forwarded to the backend on registration.
type SignUpRequest struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	Password       string `json:"password"`
	Location       string `json:"location"`
	Intro          string `json:"intro"`
	Role           string `json:"role"`
	AgreeTerms     bool   `json:"agreeTerms"`
	AgreePrivacy   bool   `json:"agreePrivacy"`
	AgreeMarketing bool   `json:"agreeMarketing"`
}

// LoginResult identifies the user and carries the backend bearer token.
type LoginResult struct {
	ID        uint64 `json:"id" validate:"required"`
	UserToken string `json:"userToken" validate:"required"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// ExperienceInput is sent for summarization.
type ExperienceInput struct {
	Title       string   `json:"title"`
	Role        string   `json:"role"`
	Achievement string   `json:"achievement"`
	Tags        []string `json:"tags"`
}

// ExperienceSummary is the backend's summary of one experience.
type ExperienceSummary struct {
	Summary string   `json:"summary" validate:"required"`
	Tags    []string `json:"tags"`
}

// SelfIntroFeedback is one reviewed self-introduction draft.
type SelfIntroFeedback struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Feedback string `json:"feedback" validate:"required"`
}

// ProfileMatch is one profile search hit.
type ProfileMatch struct {
	ID          int64    `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Title       string   `json:"title"`
	ImgURL      string   `json:"imgUrl"`
	Location    string   `json:"location"`
	Link        string   `json:"link"`
	MatchCount  int      `json:"matchCount" validate:"gte=0"`
	MeTagCount  int      `json:"meTagCount" validate:"gte=0"`
	MatchedTags []string `json:"matchedTags"`
}

// CareerPath is a suggested next role in a generated clone.
type CareerPath struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Match       int    `json:"match" validate:"gte=0,lte=100"`
}

// CloneProfile is the backend-generated AI clone of a user.
type CloneProfile struct {
	Name            string       `json:"name" validate:"required"`
	Role            string       `json:"role"`
	Personality     string       `json:"personality"`
	Summary         string       `json:"summary" validate:"required"`
	Strengths       []string     `json:"strengths"`
	Recommendations []CareerPath `json:"recommendations" validate:"dive"`
}

type chatResponse struct {
	Genera string `json:"genera" validate:"required"`
}

type searchRequest struct {
	SelfIntroduction string `json:"selfIntroduction"`
}

// SignUp registers a new account with the backend.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	if req.UserID == "" {
		req.UserID = req.Email
	}
	if req.Role == "" {
		req.Role = "USER"
	}
	return c.do(ctx, http.MethodPost, "/api/auth/signUp", "", req, nil)
}

// CheckEmail reports whether email is already registered. The backend answers
// with a boolean or a 0/1 number.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/auth/signUp/checkEmail", "", map[string]string{"email": email}, &raw); err != nil {
		return false, err
	}
	trimmed := bytes.TrimSpace(raw)
	var flag bool
	if errBool := json.Unmarshal(trimmed, &flag); errBool == nil {
		return flag, nil
	}
	n, errNum := strconv.ParseFloat(string(trimmed), 64)
	if errNum != nil {
		return false, fmt.Errorf("%w: check email: unexpected body %s", ErrContractViolation, summarize(trimmed))
	}
	return n != 0, nil
}

// Login exchanges credentials for the backend user id and bearer token.
func (c *Client) Login(ctx context.Context, userID, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"userId": userID, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// SummarizeExperience asks the backend to summarize an experience.
func (c *Client) SummarizeExperience(ctx context.Context, token string, in ExperienceInput) (ExperienceSummary, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	var out ExperienceSummary
	if err := c.do(ctx, http.MethodPost, "/api/summarize-experience", token, in, &out); err != nil {
		return ExperienceSummary{}, err
	}
	return out, nil
}

// ListSelfIntroFeedback returns the user's reviewed drafts.
func (c *Client) ListSelfIntroFeedback(ctx context.Context, token string) ([]SelfIntroFeedback, error) {
	out := []SelfIntroFeedback{}
	if err := c.do(ctx, http.MethodGet, "/api/SelfIntroList", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestSelfIntroFeedback submits a draft for review.
func (c *Client) RequestSelfIntroFeedback(ctx context.Context, token, subject, content string) (SelfIntroFeedback, error) {
	var out SelfIntroFeedback
	body := map[string]string{"subject": subject, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/AISelfIntroFeedback", token, body, &out); err != nil {
		return SelfIntroFeedback{}, err
	}
	return out, nil
}

// GenerateChat returns the assistant reply to message.
func (c *Client) GenerateChat(ctx context.Context, token string, userID uint64, message string) (string, error) {
	var out chatResponse
	body := map[string]any{"message": message, "userId": userID}
	if err := c.do(ctx, http.MethodPost, "/api/gpt/generate", token, body, &out); err != nil {
		return "", err
	}
	return out.Genera, nil
}

// SearchProfiles finds internal profiles matching a self introduction.
func (c *Client) SearchProfiles(ctx context.Context, token, selfIntroduction string) ([]ProfileMatch, error) {
	return c.search(ctx, "/api/search", token, selfIntroduction)
}

// SearchExternalProfiles finds external profiles matching a self introduction.
func (c *Client) SearchExternalProfiles(ctx context.Context, token, selfIntroduction string) ([]ProfileMatch, error) {
	return c.search(ctx, "/api/external_search", token, selfIntroduction)
}

func (c *Client) search(ctx context.Context, path, token, selfIntroduction string) ([]ProfileMatch, error) {
	out := []ProfileMatch{}
	if err := c.do(ctx, http.MethodPost, path, token, searchRequest{SelfIntroduction: selfIntroduction}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateClone asks the backend to build the user's AI clone.
func (c *Client) GenerateClone(ctx context.Context, token string, userID uint64) (CloneProfile, error) {
	var out CloneProfile
	if err := c.do(ctx, http.MethodPost, "/api/clone/generate", token, map[string]any{"userId": userID}, &out); err != nil {
		return CloneProfile{}, err
	}
	return out, nil
}
