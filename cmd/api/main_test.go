// Package main contains integration tests for the API server lifecycle.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

// TestGracefulShutdown_SignalHandling tests that the server start/shutdown
// sequence logs in order and shuts down cleanly.
func TestGracefulShutdown_SignalHandling(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find available port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverStarted := make(chan struct{})
	serverStopped := make(chan struct{})

	go func() {
		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			t.Errorf("failed to listen: %v", err)
			close(serverStarted)
			close(serverStopped)
			return
		}
		logger.Info("starting server", "addr", addr)
		close(serverStarted)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("server error: %v", err)
		}
		close(serverStopped)
	}()

	select {
	case <-serverStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server failed to start in time")
	}

	time.Sleep(50 * time.Millisecond)

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("server shutdown error: %v", err)
	}

	logger.Info("server stopped")

	select {
	case <-serverStopped:
	case <-time.After(15 * time.Second):
		t.Fatal("server failed to stop in time")
	}

	// Verify log order
	logs := logBuf.String()
	startIdx := strings.Index(logs, "starting server")
	shutdownIdx := strings.Index(logs, "shutting down server")
	stoppedIdx := strings.Index(logs, "server stopped")

	if startIdx == -1 || shutdownIdx == -1 || stoppedIdx == -1 {
		t.Fatalf("expected start/shutdown/stopped log messages, got: %s", logs)
	}
	if startIdx > shutdownIdx {
		t.Error("expected 'starting server' to come before 'shutting down server'")
	}
	if shutdownIdx > stoppedIdx {
		t.Error("expected 'shutting down server' to come before 'server stopped'")
	}
}

// TestGracefulShutdown_InFlightRequests tests that a ranking call in flight
// completes before shutdown finishes.
func TestGracefulShutdown_InFlightRequests(t *testing.T) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find available port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	var mu sync.Mutex
	var requestStarted bool
	var requestCompleted bool
	handlerStarted := make(chan struct{})
	handlerCanContinue := make(chan struct{})

	// Simulates a slow candidate ranking request
	mux := http.NewServeMux()
	mux.HandleFunc("/missions/m-1/candidates", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requestStarted = true
		mu.Unlock()
		close(handlerStarted)

		<-handlerCanContinue

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"completed"}`))

		mu.Lock()
		requestCompleted = true
		mu.Unlock()
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverStarted := make(chan struct{})
	serverStopped := make(chan struct{})

	go func() {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			t.Errorf("failed to listen: %v", err)
			close(serverStarted)
			close(serverStopped)
			return
		}
		close(serverStarted)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("server error: %v", err)
		}
		close(serverStopped)
	}()

	select {
	case <-serverStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server failed to start in time")
	}

	time.Sleep(50 * time.Millisecond)

	// Start in-flight request in a goroutine
	requestDone := make(chan struct{})
	var response *http.Response
	go func() {
		resp, err := http.Get("http://" + addr + "/missions/m-1/candidates")
		if err != nil {
			t.Errorf("request error: %v", err)
		}
		response = resp
		close(requestDone)
	}()

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler failed to start in time")
	}

	// Start shutdown while the request is in flight
	shutdownDone := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Errorf("shutdown error: %v", err)
		}
		close(shutdownDone)
	}()

	time.Sleep(50 * time.Millisecond)

	// Now allow the handler to complete
	close(handlerCanContinue)

	select {
	case <-requestDone:
	case <-time.After(5 * time.Second):
		t.Fatal("request failed to complete in time")
	}

	select {
	case <-shutdownDone:
	case <-time.After(15 * time.Second):
		t.Fatal("shutdown failed to complete in time")
	}

	mu.Lock()
	if !requestStarted {
		t.Error("expected request to have started")
	}
	if !requestCompleted {
		t.Error("expected request to have completed")
	}
	mu.Unlock()

	if response != nil {
		defer response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", response.StatusCode)
		}
		body, _ := io.ReadAll(response.Body)
		var result map[string]string
		if err := json.Unmarshal(body, &result); err != nil {
			t.Errorf("failed to parse response: %v", err)
		}
		if result["status"] != "completed" {
			t.Errorf("expected status 'completed', got '%s'", result["status"])
		}
	}
}

// TestSignalNotify tests that signal.Notify catches the termination signals
// the server waits on.
func TestSignalNotify(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			time.Sleep(50 * time.Millisecond)
			syscall.Kill(syscall.Getpid(), sig)
		}()

		select {
		case got := <-quit:
			if got != sig {
				t.Errorf("expected %v, got %v", sig, got)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("did not receive %v in time", sig)
		}
		signal.Stop(quit)
	}
}
