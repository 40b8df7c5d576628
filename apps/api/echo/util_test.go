package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/stemquest/apps/api/echo"
	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
	"github.com/trezcool/stemquest/core/player"
	"github.com/trezcool/stemquest/services/events"
	"github.com/trezcool/stemquest/storage/database/inmem"
	"github.com/trezcool/stemquest/tests"
)

var (
	student = player.Player{ID: "p1", Username: "ada", Roles: []string{player.RoleStudent}}
	rival   = player.Player{ID: "p2", Username: "grace", Roles: []string{player.RoleStudent}}
	teacher = player.Player{ID: "t1", Username: "mr-ohm", Roles: []string{player.RoleTeacher}}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testApp struct {
	*Server
	conf   *core.Config
	svc    *game.Service
	levels *circuit.Catalog
}

// setup builds a server on in-memory storage. tweak, if given, adjusts the config first.
func setup(t *testing.T, tweak ...func(conf *core.Config)) testApp {
	conf := testutil.NewConfig()
	conf.Server.RateLimit = 0
	for _, fn := range tweak {
		fn(conf)
	}

	validate, _ := newValidator()
	levels, err := circuit.LoadCatalog("", validate)
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}

	logger := testutil.NewLogger()
	svc := game.NewService(
		conf,
		levels,
		inmemdb.NewAttemptRepository(inmemdb.Open()),
		eventsvc.NewConsoleServiceMock(logger),
		logger,
	)
	return testApp{Server: newTestServer(t, conf, svc), conf: conf, svc: svc, levels: levels}
}

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	circuit.InitValidators(validate, translator)
	return validate, translator
}

func newTestServer(t *testing.T, conf *core.Config, svc game.ServiceInterface) *Server {
	validate, translator := newValidator()
	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NewLogger(),
		GameSvc:    svc,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = server.Close() })
	return server
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do sends a request to app and decodes a successful JSON response into out, if given.
func do(t *testing.T, app testApp, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marshalObj(t, body)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("do(%s %s): %v", method, path, err)
		}
	}
	return rec
}

func getToken(t *testing.T, conf *core.Config, p player.Player) string {
	token, err := GenerateToken(conf, GetPlayerClaims(conf, p))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
