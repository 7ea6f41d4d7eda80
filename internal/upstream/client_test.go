package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second)
}

func TestLoginDecodesAndForwardsCredentials(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["userId"] != "a@b.c" || body["password"] != "pw" {
			t.Errorf("unexpected body %#v", body)
		}
		_, _ = io.WriteString(w, `{"id":17,"userToken":"tok","name":"Kim"}`)
	})

	res, errLogin := client.Login(context.Background(), "a@b.c", "pw")
	if errLogin != nil {
		t.Fatalf("login: %v", errLogin)
	}
	if res.ID != 17 || res.UserToken != "tok" {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestLoginMissingTokenIsContractViolation(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":17}`)
	})
	_, errLogin := client.Login(context.Background(), "a@b.c", "pw")
	if !errors.Is(errLogin, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", errLogin)
	}
}

func TestNon2xxIsUnavailableWithStatus(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "down")
	})
	_, errChat := client.GenerateChat(context.Background(), "tok", 1, "hi")
	if !errors.Is(errChat, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", errChat)
	}
	var statusErr *StatusError
	if !errors.As(errChat, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status error 502, got %v", errChat)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second)
	if _, errCheck := client.CheckEmail(context.Background(), "a@b.c"); !errors.Is(errCheck, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", errCheck)
	}
}

func TestGenerateChatForwardsBearerToken(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = io.WriteString(w, `{"genera":"안녕하세요"}`)
	})
	reply, errChat := client.GenerateChat(context.Background(), "tok", 3, "hello")
	if errChat != nil {
		t.Fatalf("chat: %v", errChat)
	}
	if reply != "안녕하세요" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestCheckEmailAcceptsBoolAndNumber(t *testing.T) {
	for body, want := range map[string]bool{"true": true, "false": false, "1": true, "0": false} {
		body, want := body, want
		client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		got, errCheck := client.CheckEmail(context.Background(), "a@b.c")
		if errCheck != nil {
			t.Fatalf("check %s: %v", body, errCheck)
		}
		if got != want {
			t.Fatalf("check %s: got %v want %v", body, got, want)
		}
	}

	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `"maybe"`)
	})
	if _, errCheck := client.CheckEmail(context.Background(), "a@b.c"); !errors.Is(errCheck, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", errCheck)
	}
}

func TestSearchValidatesEveryItem(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/external_search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":1,"name":"Lee","matchCount":2,"meTagCount":4},{"id":2}]`)
	})
	if _, errSearch := client.SearchExternalProfiles(context.Background(), "tok", "UX"); !errors.Is(errSearch, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", errSearch)
	}
}

func TestSearchProfilesDecodesList(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["selfIntroduction"] != "UX 디자이너" {
			t.Errorf("unexpected body %#v", body)
		}
		_, _ = io.WriteString(w, `[{"id":1,"name":"Lee","title":"Designer","matchCount":2,"meTagCount":4,"matchedTags":["UX"]}]`)
	})
	matches, errSearch := client.SearchProfiles(context.Background(), "tok", "UX 디자이너")
	if errSearch != nil {
		t.Fatalf("search: %v", errSearch)
	}
	if len(matches) != 1 || matches[0].MatchedTags[0] != "UX" {
		t.Fatalf("unexpected matches %#v", matches)
	}
}

func TestSignUpDefaultsUserIDAndRole(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		var body SignUpRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.UserID != "a@b.c" || body.Role != "USER" {
			t.Errorf("unexpected body %#v", body)
		}
		w.WriteHeader(http.StatusCreated)
	})
	if errSignUp := client.SignUp(context.Background(), SignUpRequest{Email: "a@b.c", Password: "password1"}); errSignUp != nil {
		t.Fatalf("sign up: %v", errSignUp)
	}
}

func TestGenerateCloneValidatesNestedPaths(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"클론","summary":"요약","recommendations":[{"title":"","match":50}]}`)
	})
	if _, errClone := client.GenerateClone(context.Background(), "tok", 1); !errors.Is(errClone, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", errClone)
	}
}
