package main

import (
	"fmt"
	"net/http"

	"github.com/William9923/go-apptest"
	"github.com/go-chi/chi/v5"
)

func main() {
	r := chi.NewRouter()
	r.Post("/todos", func(w http.ResponseWriter, hr *http.Request) {
		req, _ := apptest.RequestFrom(hr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(req.RawBody()))
	})

	client := apptest.NewClient(apptest.NewHandlerApp(r))
	resp, err := client.RequestJSON(http.MethodPost, "/todos", map[string]interface{}{"title": "日本語"}, nil)
	if err != nil {
		panic(err)
	}

	body, err := resp.ParsedBody()
	if err != nil {
		panic(err)
	}

	fmt.Println(resp.StatusCode(), body)
}
