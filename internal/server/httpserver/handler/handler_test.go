package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
)

const testToken = "c2Vzc2lvbg:Y3JlZHM"

type fakeAuth struct {
	sendCode func(phone string, creds domain.APICredentials) (domain.AuthResult, error)
	logout   error
	gotToken string
}

func (f *fakeAuth) SendCode(_ context.Context, phone string, creds domain.APICredentials) (domain.AuthResult, error) {
	return f.sendCode(phone, creds)
}

func (f *fakeAuth) VerifyCode(_ context.Context, tok, code string) (domain.AuthResult, error) {
	f.gotToken = tok
	if code != "12345" {
		return domain.AuthResult{}, domain.ErrCodeInvalid
	}
	return domain.AuthResult{Message: "ok", NextStep: domain.StepCompleted, SessionString: "new:token"}, nil
}

func (f *fakeAuth) VerifyPassword(context.Context, string, string) (domain.AuthResult, error) {
	return domain.AuthResult{}, domain.ErrPasswordInvalid
}

func (f *fakeAuth) Logout(_ context.Context, tok string) error {
	f.gotToken = tok
	return f.logout
}

type fakeChats struct {
	chats     []domain.ChatSummary
	err       error
	lastQuery domain.HistoryQuery
	lastChat  string
	media     []byte
	mediaInfo domain.MediaInfo
}

func (f *fakeChats) ListChats(context.Context, string, int) ([]domain.ChatSummary, error) {
	return f.chats, f.err
}

func (f *fakeChats) ListMessages(_ context.Context, _ string, chatID string, q domain.HistoryQuery) (domain.MessagePage, error) {
	f.lastChat, f.lastQuery = chatID, q
	return domain.NewMessagePage(nil, q.Limit), f.err
}

func (f *fakeChats) DownloadMedia(_ context.Context, _ string, _ string, _ int64, w io.Writer) (domain.MediaInfo, error) {
	if f.err != nil {
		return domain.MediaInfo{}, f.err
	}
	n, err := w.Write(f.media)
	info := f.mediaInfo
	info.Size = int64(n)
	return info, err
}

type fakeMessages struct {
	lastChat   string
	lastText   string
	lastUpload domain.Upload
	deleted    []int64
	err        error
}

func (f *fakeMessages) Send(_ context.Context, _ string, chatID, text string, _ int64) (domain.SentMessage, error) {
	f.lastChat, f.lastText = chatID, text
	return domain.SentMessage{MessageID: 10, Date: time.Unix(1700000000, 0).UTC()}, f.err
}

func (f *fakeMessages) SendWithFile(_ context.Context, _ string, chatID, caption string, _ int64, file domain.Upload) (domain.SentMessage, error) {
	f.lastChat, f.lastText, f.lastUpload = chatID, caption, file
	return domain.SentMessage{MessageID: 11}, f.err
}

func (f *fakeMessages) Delete(_ context.Context, _ string, chatID string, ids []int64) ([]int64, error) {
	f.lastChat = chatID
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = ids
	return ids, nil
}

func (f *fakeMessages) Forward(_ context.Context, _ string, from, to string, _ int64) (domain.SentMessage, error) {
	f.lastChat = from + ">" + to
	return domain.SentMessage{MessageID: 12}, f.err
}

func (f *fakeMessages) Edit(_ context.Context, _ string, chatID, _ string, text string) (domain.SentMessage, error) {
	f.lastChat, f.lastText = chatID, text
	return domain.SentMessage{MessageID: 13}, f.err
}

type fakeGroups struct {
	info domain.GroupInfo
	err  error
}

func (f *fakeGroups) Join(context.Context, string, string) (domain.GroupInfo, error) {
	return f.info, f.err
}

type testEnv struct {
	h        *Handler
	auth     *fakeAuth
	chats    *fakeChats
	messages *fakeMessages
	groups   *fakeGroups
}

func newTestEnv(t *testing.T, mod func(*Config)) *testEnv {
	t.Helper()
	env := &testEnv{
		auth: &fakeAuth{sendCode: func(string, domain.APICredentials) (domain.AuthResult, error) {
			return domain.AuthResult{Message: "code sent", NextStep: domain.StepVerifyCode, SessionString: "pre:auth"}, nil
		}},
		chats:    &fakeChats{},
		messages: &fakeMessages{},
		groups:   &fakeGroups{},
	}
	cfg := Config{
		Auth:     env.auth,
		Chats:    env.chats,
		Messages: env.messages,
		Groups:   env.groups,
		SpoolDir: t.TempDir(),
		Logger:   logger.NewNop(),
	}
	if mod != nil {
		mod(&cfg)
	}
	env.h = New(cfg)
	return env
}

func (e *testEnv) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req = req.WithContext(WithSessionToken(req.Context(), testToken))
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, target, body string) *httptest.ResponseRecorder {
	return e.do(method, target, strings.NewReader(body), "application/json")
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"TG-CHAT-4040", 404},
		{"TG-TOKEN-4010", 401},
		{"TG-RATE-4290", 429},
		{"TG-GROUP-4090", 409},
		{"TG-SYS-5040", 504},
		{"TG-SYS-abc", 500},
		{"NOCODE", 500},
		{"TG-X-0999", 500},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.code); got != tt.want {
			t.Errorf("StatusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestChatID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"@golang"`, "@golang", false},
		{`-1001234567890`, "-1001234567890", false},
		{`" 42 "`, "42", false},
		{`1.5`, "", true},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var c ChatID
		err := json.Unmarshal([]byte(tt.in), &c)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && c.String() != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, c.String(), tt.want)
		}
	}
}

func TestHandleHealthAndReady(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.Ready = func() error { return errors.New("draining") }
	})

	if rec := env.do("GET", "/health", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}

	rec := env.do("GET", "/ready", nil, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /ready status = %d, want 503", rec.Code)
	}
	if got := decode(t, rec).Details["reason"]; got != "draining" {
		t.Errorf("reason = %v, want draining", got)
	}
}

func TestHandleSendCode(t *testing.T) {
	env := newTestEnv(t, nil)
	var gotPhone string
	var gotCreds domain.APICredentials
	env.auth.sendCode = func(phone string, creds domain.APICredentials) (domain.AuthResult, error) {
		gotPhone, gotCreds = phone, creds
		return domain.AuthResult{NextStep: domain.StepVerifyCode, SessionString: "pre:auth"}, nil
	}

	rec := env.doJSON("POST", "/auth/send_code", `{"phone":"+15550001","api_id":12345,"api_hash":"abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotPhone != "+15550001" || gotCreds.ID != 12345 || gotCreds.Hash != "abc" {
		t.Errorf("SendCode got (%q, %+v)", gotPhone, gotCreds)
	}

	var res domain.AuthResult
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.SessionString != "pre:auth" || res.NextStep != domain.StepVerifyCode {
		t.Errorf("data = %+v", res)
	}
}

func TestHandleVerifyCode(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON("POST", "/auth/verify_code", `{"code":"12345"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.auth.gotToken != testToken {
		t.Errorf("token = %q, want %q", env.auth.gotToken, testToken)
	}

	rec = env.doJSON("POST", "/auth/verify_code", `{"code":"00000"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong code status = %d, want 400", rec.Code)
	}
	if got := decode(t, rec).Code; got != domain.ErrCodeInvalid.Code {
		t.Errorf("code = %q, want %q", got, domain.ErrCodeInvalid.Code)
	}
}

func TestHandleLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do("DELETE", "/auth/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res LogoutResponse
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Message != "Successfully logged out" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrChatNotFound, http.StatusNotFound, domain.ErrChatNotFound.Code},
		{"wrapped", domain.ErrProtocol.Wrap(errors.New("rpc")), http.StatusBadRequest, domain.ErrProtocol.Code},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout, domain.ErrTimeout.Code},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, domain.ErrInternal.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.chats.err = tt.err

			rec := env.do("GET", "/chats", nil, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decode(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
			if got := rec.Header().Get("X-Error-Code"); got != tt.wantCode {
				t.Errorf("X-Error-Code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestHandleServiceError_RateLimited(t *testing.T) {
	env := newTestEnv(t, nil)
	env.chats.err = domain.RateLimited(30 * time.Second)

	rec := env.do("GET", "/chats", nil, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q, want 30", got)
	}
	if got := decode(t, rec).Details["wait_seconds"]; got != float64(30) {
		t.Errorf("wait_seconds = %v, want 30", got)
	}
}

func TestHandleListChats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.chats.chats = []domain.ChatSummary{{Name: "Go", ID: -1001, Type: domain.ChatTypeSupergroup}}

	rec := env.do("GET", "/chats?limit=5", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res ChatsResponse
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.TotalCount != 1 || res.Chats[0].Name != "Go" {
		t.Errorf("data = %+v", res)
	}

	for _, q := range []string{"abc", "0", "-3", "1001", "4294967396"} {
		if rec := env.do("GET", "/chats?limit="+q, nil, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHandleListMessages(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, q domain.HistoryQuery)
	}{
		{"missing chat_id", "", http.StatusBadRequest, nil},
		{"bad limit", "chat_id=1&limit=x", http.StatusBadRequest, nil},
		{"zero limit", "chat_id=1&limit=0", http.StatusBadRequest, nil},
		{"limit above max", "chat_id=1&limit=1001", http.StatusBadRequest, nil},
		{"offset beyond int32", "chat_id=1&offset_id=4294967296", http.StatusBadRequest, nil},
		{"negative offset", "chat_id=1&offset_id=-5", http.StatusBadRequest, nil},
		{"limit above one batch", "chat_id=1&limit=250", http.StatusOK, func(t *testing.T, q domain.HistoryQuery) {
			if q.Limit != 250 {
				t.Errorf("Limit = %d, want 250", q.Limit)
			}
		}},
		{"bad date", "chat_id=1&from_date=yesterday", http.StatusBadRequest, nil},
		{"defaults", "chat_id=@golang", http.StatusOK, func(t *testing.T, q domain.HistoryQuery) {
			if q.Limit != domain.DefaultHistoryLimit || q.OffsetID != 0 || q.Filtered() {
				t.Errorf("query = %+v, want defaults", q)
			}
		}},
		{"all filters", "chat_id=@golang&limit=20&offset_id=900&search=release&from_date=2024-01-01T00:00:00Z&to_date=2024-02-01T00:00:00Z", http.StatusOK, func(t *testing.T, q domain.HistoryQuery) {
			if q.Limit != 20 || q.OffsetID != 900 || q.Search != "release" {
				t.Errorf("query = %+v", q)
			}
			if q.FromDate == nil || q.FromDate.Month() != time.January || q.ToDate == nil || q.ToDate.Month() != time.February {
				t.Errorf("dates = %v, %v", q.FromDate, q.ToDate)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do("GET", "/messages/?"+tt.query, nil, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, env.chats.lastQuery)
			}
		})
	}
}

func TestHandleMedia(t *testing.T) {
	env := newTestEnv(t, nil)
	env.chats.media = []byte("\xff\xd8\xffjpegdata")
	env.chats.mediaInfo = domain.MediaInfo{Type: domain.MediaPhoto, ContentType: "image/jpeg", FileName: "photo 7.jpg"}

	rec := env.do("GET", "/messages/media/7?chat_id=@golang", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="photo 7.jpg"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), env.chats.media) {
		t.Errorf("body = %q, want media bytes", rec.Body.Bytes())
	}

	if rec := env.do("GET", "/messages/media/abc?chat_id=1", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	if rec := env.do("GET", "/messages/media/7", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing chat_id status = %d, want 400", rec.Code)
	}

	env.chats.err = domain.ErrNoMedia
	if rec := env.do("GET", "/messages/media/7?chat_id=1", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("no media status = %d, want 400", rec.Code)
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want string
	}{
		{"report.pdf", 1, `attachment; filename=report.pdf`},
		{"", 9, `attachment; filename=media_9`},
		{"отчет.pdf", 2, `attachment; filename*=utf-8''%D0%BE%D1%82%D1%87%D0%B5%D1%82.pdf`},
	}
	for _, tt := range tests {
		if got := contentDisposition(tt.name, tt.id); got != tt.want {
			t.Errorf("contentDisposition(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHandleSend(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON("POST", "/messages/send", `{"chat_id":-1001234,"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env.messages.lastChat != "-1001234" || env.messages.lastText != "hello" {
		t.Errorf("Send got (%q, %q)", env.messages.lastChat, env.messages.lastText)
	}
	var res SendMessageResponse
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !res.Success || res.MessageID != 10 {
		t.Errorf("data = %+v", res)
	}

	if rec := env.doJSON("POST", "/messages/send", `{"chat_id":`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
	big := `{"text":"` + strings.Repeat("a", maxJSONBody) + `"}`
	if rec := env.doJSON("POST", "/messages/send", big); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want 413", rec.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleSendWithFile(t *testing.T) {
	env := newTestEnv(t, nil)

	body, ct := multipartBody(t, map[string]string{"chat_id": "@golang", "text": "see attached"}, "report.pdf", []byte("%PDF-1.4"))
	rec := env.do("POST", "/messages/send_with_file", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	up := env.messages.lastUpload
	if up.Name != "report.pdf" || string(up.Data) != "%PDF-1.4" || env.messages.lastText != "see attached" {
		t.Errorf("upload = %q %q caption %q", up.Name, up.Data, env.messages.lastText)
	}

	tests := []struct {
		name       string
		fields     map[string]string
		file       string
		wantStatus int
	}{
		{"missing chat_id", map[string]string{"text": "x"}, "a.txt", http.StatusBadRequest},
		{"missing file", map[string]string{"chat_id": "1"}, "", http.StatusBadRequest},
		{"bad reply id", map[string]string{"chat_id": "1", "reply_to_message_id": "x"}, "a.txt", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.file, []byte("data"))
			if rec := env.do("POST", "/messages/send_with_file", body, ct); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleSendWithFile_TooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.MaxUploadBytes = 1024 })

	body, ct := multipartBody(t, map[string]string{"chat_id": "1"}, "big.bin", bytes.Repeat([]byte("x"), 4096))
	rec := env.do("POST", "/messages/send_with_file", body, ct)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON("DELETE", "/messages/delete", `{"chat_id":"@golang","message_ids":[1,2,3]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res DeleteMessageResponse
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !res.Success || len(res.DeletedMessages) != 3 {
		t.Errorf("data = %+v", res)
	}

	env.messages.err = domain.ErrNothingDeleted
	if rec := env.doJSON("DELETE", "/messages/delete", `{"chat_id":"1","message_ids":[9]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("nothing deleted status = %d, want 400", rec.Code)
	}
}

func TestHandleForwardAndEdit(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.doJSON("POST", "/messages/forward", `{"from_chat_id":1,"to_chat_id":"@dest","message_id":5}`); rec.Code != http.StatusOK {
		t.Fatalf("forward status = %d, want 200", rec.Code)
	}
	if env.messages.lastChat != "1>@dest" {
		t.Errorf("forward chats = %q, want 1>@dest", env.messages.lastChat)
	}

	if rec := env.doJSON("POST", "/messages/edit", `{"chat_id":"1","message_id":"42","new_text":"fixed"}`); rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, want 200", rec.Code)
	}
	if env.messages.lastText != "fixed" {
		t.Errorf("edit text = %q, want fixed", env.messages.lastText)
	}
}

func TestHandleJoin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.groups.info = domain.GroupInfo{ID: -1009, Title: "Gophers", Username: "golang"}

	rec := env.doJSON("POST", "/groups/join", `{"group_identifier":"@golang"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res JoinResponse
	if err := json.Unmarshal(decode(t, rec).Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !res.Success || res.Title != "Gophers" || res.Message != "Successfully joined" {
		t.Errorf("data = %+v", res)
	}

	env.groups.err = domain.ErrInviteHashExpired
	if rec := env.doJSON("POST", "/groups/join", `{"group_identifier":"+abc"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expired invite status = %d, want 400", rec.Code)
	}
}

func TestRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	tests := []struct {
		method, path, want string
	}{
		{"GET", "/messages/media/5", "GET /messages/media/{message_id}"},
		{"GET", "/messages/", "GET /messages/{$}"},
		{"GET", "/nope", "unmatched"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if got := env.h.Route(req); got != tt.want {
			t.Errorf("Route(%s %s) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}
