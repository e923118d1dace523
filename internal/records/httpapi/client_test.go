package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoadDecodesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"Сотрудник":"Иванов","Дата":"01.03.2025","Первый вход":"09:00","Последний выход":"18:00","net_seconds":28800,
			 "breaks":[{"Тип":"Обед","Время выхода":"12:00","Время возвращения":"12:30","Длительность_сек":1800}]},
			{"Сотрудник":"Петров","Дата":"01.03.2025","net_seconds":14400}
		]`))
	}))
	defer srv.Close()

	recs, err := New(srv.URL, time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Employee != "Иванов" || recs[0].NetSeconds != 28800 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if len(recs[0].Breaks) != 1 || recs[0].Breaks[0].Kind != "Обед" {
		t.Fatalf("breaks not decoded: %+v", recs[0].Breaks)
	}
}

func TestLoadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).Load(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestLoadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Load(context.Background())
	if err == nil || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected a non-timeout error, got %v", err)
	}
}

func TestLoadBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Load(context.Background())
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadHonorsCallerContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := New(srv.URL, time.Minute).Load(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected cancellation error")
		}
		if errors.Is(err, ErrTimeout) {
			t.Fatalf("cancellation must not look like a timeout: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Load did not return after cancellation")
	}
}
