package apptest

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRouter(t *testing.T) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/todos", func(w http.ResponseWriter, hr *http.Request) {
		req, _ := RequestFrom(hr)
		parsed, err := req.ParsedBody()
		require.NoError(t, err)
		todo := parsed.(map[string]interface{})
		todo["custom"] = req.HeaderLine("X-My-Custom")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		out, err := Fields{{"title", todo["title"]}, {"custom", todo["custom"]}}.MarshalJSON()
		require.NoError(t, err)
		w.Write(out)
	})
	r.Post("/uploads", func(w http.ResponseWriter, hr *http.Request) {
		req, _ := RequestFrom(hr)
		f, ok := req.UploadedFiles.File("uploadfile")
		require.True(t, ok)
		content, err := f.Contents()
		require.NoError(t, err)
		fmt.Fprintf(w, "%s:%d", content, len(req.UploadedFiles.List("attachments")))
	})
	return r
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	create := scenarios[0]
	assert.Equal(t, "create todo", create.Name)
	assert.Equal(t, http.MethodPost, create.Method)
	assert.True(t, create.JSON)
	assert.Equal(t, Fields{{"title", "日本語"}, {"done", false}}, create.Body)
	assert.Equal(t, "testdata/scenarios/01_create.yaml", create.Source())
}

func TestScenarioLoader_LoadOnce(t *testing.T) {
	loader, err := NewScenarioLoader("testdata/scenarios")
	require.NoError(t, err)

	_, err = loader.Load()
	require.NoError(t, err)
	_, err = loader.Load()
	assert.ErrorIs(t, err, ErrScenariosLoaded)

	_, err = NewScenarioLoader("testdata/missing")
	assert.Error(t, err)
}

func TestClient_Play(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	client := newTestClient(scenarioRouter(t))
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			_, err := client.Play(context.Background(), s)
			assert.NoError(t, err)
		})
	}
}

func TestClient_Play_RuleNotSatisfied(t *testing.T) {
	client := newTestClient(scenarioRouter(t))

	resp, err := client.Play(context.Background(), Scenario{
		Name:   "wrong status",
		Method: http.MethodPost,
		URL:    "/todos",
		JSON:   true,
		Body:   map[string]interface{}{"title": "x"},
		Expect: []string{"status == 201", "status == 200"},
	})
	assert.ErrorIs(t, err, ErrRuleNotSatisfied)
	assert.Contains(t, err.Error(), "status == 200")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
}
