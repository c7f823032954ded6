// Package handlers holds the leaf routes served behind the pipeline.
package handlers

import (
	"time"

	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/http"
)

const DefaultSleep = 5 * time.Second

// Register wires the stock routes into router.
func Register(router *http.Router, fs filesystem.Filesystem, publicDir string) {
	router.GET("/", Greeting)
	router.POST("/", EchoBody)
	router.Any([]http.Method{http.MethodPut, http.MethodDelete}, "/", http.MethodNotAllowedHandler)
	router.GET("/echo", Echo)
	router.GET("/sleep", Sleep(DefaultSleep))
	router.GET("/public/*", Static(fs, publicDir))
}

func Greeting(req http.Request, res http.Response) http.Response {
	return res.WithStatus(http.StatusOK).WithText("Hello")
}

func EchoBody(req http.Request, res http.Response) http.Response {
	return res.WithStatus(http.StatusOK).WithBody(http.ContentTypeText, req.Body)
}

// Echo answers with the decoded query string as a JSON object.
func Echo(req http.Request, res http.Response) http.Response {
	return res.WithStatus(http.StatusOK).WithJSON(req.Query)
}

// Sleep holds the request for d, or until the connection context ends.
func Sleep(d time.Duration) http.Handler {
	return func(req http.Request, res http.Response) http.Response {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return res.WithStatus(http.StatusOK).WithText("Done sleeping")
		case <-req.Context().Done():
			return res.WithStatus(http.StatusInternalError).WithText("500 Internal Error")
		}
	}
}
