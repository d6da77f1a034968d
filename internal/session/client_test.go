package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/courtbooker/internal/booking"
	"github.com/mauv0809/courtbooker/internal/config"
	"github.com/mauv0809/courtbooker/internal/logger"
)

const loginPage = `<html><body>
<form action="/login.html" method="POST">
  <input type="hidden" name="csrf" value="tok-123">
  <input type="text" name="email" value="">
  <input type="password" name="pass" value="">
</form>
</body></html>`

const reservationPage = `<html><body>
<form id="formReservation" action="/reservation.html" method="POST">
  <input type="hidden" name="session" value="abc">
</form>
<div class="bloccourt" data-idcourt="1">
  <div class="blocCourt_title">Court central</div>
  <div class="blocCourt_container_btn-creneau">
    <button class="btn_creneau" idhoraire="55">14h00</button>
    <button class="btn_creneau btn_creneau__indispo" idhoraire="56">15h00</button>
  </div>
</div>
</body></html>`

const emptyReservationPage = `<html><body>
<form id="formReservation" action="/reservation.html" method="POST"></form>
</body></html>`

func newTestClient(t *testing.T, baseURL string, mutate func(*config.Config, *booking.Settings)) *HTTPClient {
	t.Helper()
	cfg := config.Config{
		LoginURL:  baseURL + "/login.html",
		MemberURL: baseURL + "/",
		Username:  "user@example.com",
		Password:  "s3cret",
	}
	settings := booking.DefaultSettings()
	settings.BaseURL = baseURL + "/"
	if mutate != nil {
		mutate(&cfg, &settings)
	}
	client, err := New(cfg, settings, &logger.Mock{})
	require.NoError(t, err)
	return client
}

func targetFor(t *testing.T, date string) booking.TargetDate {
	t.Helper()
	advance := 0
	target, err := booking.ResolveTargetDate(date, &advance, booking.DefaultSettings().Endpoints.ReservationPage, time.Now())
	require.NoError(t, err)
	return target
}

func TestLoginHarvestsFormAndPostsCredentials(t *testing.T) {
	var posted url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPage)
			return
		}
		require.NoError(t, r.ParseForm())
		posted = r.PostForm
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	require.NoError(t, client.Login(context.Background()))

	assert.Equal(t, "user@example.com", posted.Get("email"))
	assert.Equal(t, "s3cret", posted.Get("pass"))
	assert.Equal(t, "tok-123", posted.Get("csrf"))
}

func TestLoginSkipsInitialFetchWhenDisabled(t *testing.T) {
	gets := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(_ *config.Config, s *booking.Settings) {
		noFetch := false
		s.Endpoints.Login.FetchInitialPage = &noFetch
	})
	require.NoError(t, client.Login(context.Background()))
	assert.Zero(t, gets)
}

func TestLoginFailureStatusDoesNotLeakCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials for s3cret", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	err := client.Login(context.Background())
	require.Error(t, err)

	var netErr *booking.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "login", netErr.Op)
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestLoginTwiceIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	require.NoError(t, client.Login(context.Background()))
	assert.Error(t, client.Login(context.Background()))
}

func TestFetchContextRequiresLogin(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0", nil)
	_, err := client.FetchContext(context.Background(), targetFor(t, "2026-09-12"))
	assert.Error(t, err)
}

func TestFetchContextExtractsSlotsAndForm(t *testing.T) {
	var pageQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/reservation.html", func(w http.ResponseWriter, r *http.Request) {
		pageQuery = r.URL.Query()
		fmt.Fprint(w, reservationPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	require.NoError(t, client.Login(context.Background()))

	reservation, err := client.FetchContext(context.Background(), targetFor(t, "2026-09-12"))
	require.NoError(t, err)

	assert.Equal(t, "12/09/2026", pageQuery.Get("date"))
	assert.Equal(t, "abc", reservation.Form.Fields["session"])
	require.Len(t, reservation.Slots, 1)
	assert.Equal(t, "1", reservation.Slots[0].CourtID)
	assert.Equal(t, "Court central", reservation.Slots[0].CourtName)
	assert.Equal(t, "14h00", reservation.Slots[0].Hour)
	assert.Equal(t, "55", reservation.Slots[0].SlotID)
}

func TestFetchContextFallsBackToDataEndpointOnce(t *testing.T) {
	dataCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/reservation.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emptyReservationPage)
	})
	mux.HandleFunc("/api/slots", func(w http.ResponseWriter, r *http.Request) {
		dataCalls++
		assert.Equal(t, "2026-09-12", r.URL.Query().Get("day"))
		json.NewEncoder(w).Encode(map[string]any{
			"slots": []map[string]any{
				{"idcourt": "2", "heure": "15:00", "idhoraire": "77", "available": true},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(_ *config.Config, s *booking.Settings) {
		s.Endpoints.ReservationPage.DataEndpoint = "api/slots"
		s.Endpoints.ReservationPage.DataDateParam = "day"
		s.Endpoints.ReservationPage.DataDateFormat = "YYYY-MM-DD"
	})
	require.NoError(t, client.Login(context.Background()))

	target, err := booking.ResolveTargetDate("2026-09-12", nil, client.settings.Endpoints.ReservationPage, time.Now())
	require.NoError(t, err)
	reservation, err := client.FetchContext(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 1, dataCalls)
	require.Len(t, reservation.Slots, 1)
	assert.Equal(t, "2", reservation.Slots[0].CourtID)
	assert.Equal(t, booking.OriginDataEndpoint, reservation.Slots[0].Origin)
}

func TestDataEndpointNotCalledWhenPageHasSlots(t *testing.T) {
	dataCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/reservation.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, reservationPage)
	})
	mux.HandleFunc("/api/slots", func(w http.ResponseWriter, r *http.Request) {
		dataCalls++
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(_ *config.Config, s *booking.Settings) {
		s.Endpoints.ReservationPage.DataEndpoint = "api/slots"
	})
	require.NoError(t, client.Login(context.Background()))

	_, err := client.FetchContext(context.Background(), targetFor(t, "2026-09-12"))
	require.NoError(t, err)
	assert.Zero(t, dataCalls)
}

func TestSubmitOverlaysSlotDateAndPartnerFields(t *testing.T) {
	var posted url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/reservation.html", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			posted = r.PostForm
			return
		}
		fmt.Fprint(w, reservationPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(cfg *config.Config, _ *booking.Settings) {
		cfg.Partners = []booking.Partner{
			{Position: 1, PlayerID: "9001", PlayerName: "Alex"},
		}
	})
	require.NoError(t, client.Login(context.Background()))
	reservation, err := client.FetchContext(context.Background(), targetFor(t, "2026-09-12"))
	require.NoError(t, err)
	require.NotEmpty(t, reservation.Slots)

	require.NoError(t, client.Submit(context.Background(), reservation, reservation.Slots[0]))

	assert.Equal(t, "abc", posted.Get("session"))
	assert.Equal(t, "1", posted.Get("idcourt"))
	assert.Equal(t, "55", posted.Get("idhoraire"))
	assert.Equal(t, "14h00", posted.Get("heure"))
	assert.Equal(t, "12/09/2026", posted.Get("date"))
	assert.Equal(t, "9001", posted.Get("idplayer_1"))
	assert.Empty(t, posted.Get("test"))
}

func TestSubmitInTestModeSkipsNetworkWrite(t *testing.T) {
	finalizeCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/reservation.html", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			finalizeCalls++
			return
		}
		fmt.Fprint(w, reservationPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(cfg *config.Config, _ *booking.Settings) {
		cfg.TestMode = true
	})
	require.NoError(t, client.Login(context.Background()))
	reservation, err := client.FetchContext(context.Background(), targetFor(t, "2026-09-12"))
	require.NoError(t, err)

	require.NoError(t, client.Submit(context.Background(), reservation, reservation.Slots[0]))
	assert.Zero(t, finalizeCalls)
}

func TestSubmitRequiresFetchedContext(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0", nil)
	err := client.Submit(context.Background(), &Context{Form: booking.EmptyForm()}, booking.Slot{})
	assert.Error(t, err)
}

func TestPartnerFieldName(t *testing.T) {
	partner := booking.Partner{Position: 2, PlayerID: "42"}
	assert.Equal(t, "idplayer_2", partnerFieldName("idplayer_{position}", partner))
	assert.Equal(t, "partner2", partnerFieldName("partner{index}", partner))
	assert.Equal(t, "joueur3", partnerFieldName("joueur{number}", partner))
}

func TestLoginJSONEncoding(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			return
		}
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(_ *config.Config, s *booking.Settings) {
		noFetch := false
		s.Endpoints.Login.FetchInitialPage = &noFetch
		s.Endpoints.Login.Encoding = "json"
	})
	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "user@example.com", payload["email"])
}
