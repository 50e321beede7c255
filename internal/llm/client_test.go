package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/palpitesia/palpites-backend/internal/llm"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComplete(t *testing.T) {
	Convey("Given a failing primary and a healthy fallback provider", t, func() {
		var gotFormat string
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer primary.Close()
		fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ResponseFormat *struct {
					Type string `json:"type"`
				} `json:"response_format"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.ResponseFormat != nil {
				gotFormat = req.ResponseFormat.Type
			}
			if r.Header.Get("Authorization") != "Bearer fb-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```json\\n{\\\"jogos\\\":[]}\\n```\"}}]}"))
		}))
		defer fallback.Close()

		client := llm.NewClient([]llm.Provider{
			{Name: "glm", URL: primary.URL, APIKey: "p-key", Model: "glm-5"},
			{Name: "unset", URL: "http://127.0.0.1:1", Model: "x"},
			{Name: "deepseek", URL: fallback.URL, APIKey: "fb-key", Model: "deepseek-chat"},
		}, 5*time.Second)

		Convey("The fallback answer is returned without its code fence", func() {
			out, err := client.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, llm.Options{JSON: true})
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `{"jogos":[]}`)
			So(gotFormat, ShouldEqual, "json_object")
		})
	})

	Convey("Given no configured provider", t, func() {
		client := llm.NewClient([]llm.Provider{{Name: "openai", URL: "http://x"}}, 0)
		So(client.Available(), ShouldBeFalse)
		_, err := client.Complete(context.Background(), nil, llm.Options{})
		So(errors.Is(err, llm.ErrNoProviders), ShouldBeTrue)
	})
}

func TestExtractContent(t *testing.T) {
	Convey("Message content shapes are flattened to text", t, func() {
		So(llm.ExtractContent(json.RawMessage(`"plain"`)), ShouldEqual, "plain")
		So(llm.ExtractContent(json.RawMessage(`["a", {"text": "b"}, {"type": "text", "text": {"value": "c"}}]`)), ShouldEqual, "a b c")
		So(llm.ExtractContent(json.RawMessage(`{"text": {"value": "v"}}`)), ShouldEqual, "v")
		So(llm.ExtractContent(json.RawMessage(`null`)), ShouldEqual, "")
		So(llm.ExtractContent(json.RawMessage(`42`)), ShouldEqual, "")
	})
}
