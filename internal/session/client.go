package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/mauv0809/courtbooker/internal/booking"
	"github.com/mauv0809/courtbooker/internal/config"
	"github.com/mauv0809/courtbooker/internal/extract"
	"github.com/mauv0809/courtbooker/internal/logger"
)

// state tracks the session's linear lifecycle. Transitions only ever move
// forward; a session serves one run.
type state int

const (
	stateUnauthenticated state = iota
	stateAuthenticated
	stateContextFetched
	stateSubmitted
)

// HTTPClient is the live Client implementation: one cookie-bearing HTTP
// client performing login, context fetch and submission against the
// configured site.
type HTTPClient struct {
	hc       *http.Client
	cfg      config.Config
	settings booking.Settings
	log      logger.Logger
	state    state
}

var _ Client = (*HTTPClient)(nil)

// New creates a session client with a fresh cookie jar.
func New(cfg config.Config, settings booking.Settings, log logger.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &HTTPClient{
		hc: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		cfg:      cfg,
		settings: settings,
		log:      log,
	}, nil
}

// Login authenticates the session. When configured (the default), the login
// page is read first to harvest hidden form fields; the credentials and any
// static fields are overlaid and posted back. A completed request is treated
// as success; there is no post-login page verification.
func (c *HTTPClient) Login(ctx context.Context) error {
	if c.state != stateUnauthenticated {
		return fmt.Errorf("login: session is already authenticated")
	}
	ls := c.settings.Endpoints.Login
	loginURL := ls.URL
	if loginURL == "" {
		loginURL = c.cfg.LoginURL
	}
	if loginURL == "" {
		return &booking.ConfigurationError{Reason: "no login URL configured"}
	}

	c.log.Log(logger.Step, "Authenticating over HTTP")
	payload := map[string]string{}
	if ls.FetchInitialPage == nil || *ls.FetchInitialPage {
		body, err := c.request(ctx, "login", http.MethodGet, loginURL, c.htmlHeaders(), nil)
		if err != nil {
			return err
		}
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			form := extract.Form(doc, []string{ls.FormSelector})
			payload = form.CloneFields()
		}
	}

	usernameField := ls.UsernameField
	if usernameField == "" {
		usernameField = "email"
	}
	passwordField := ls.PasswordField
	if passwordField == "" {
		passwordField = "pass"
	}
	payload[usernameField] = c.cfg.Username
	payload[passwordField] = c.cfg.Password
	for k, v := range ls.StaticFields {
		payload[k] = v
	}

	method := ls.Method
	if method == "" {
		method = http.MethodPost
	}
	var err error
	if ls.Encoding == "json" {
		_, err = c.requestJSON(ctx, "login", method, loginURL, nil, payload)
	} else {
		_, err = c.requestForm(ctx, "login", method, loginURL, nil, payload)
	}
	if err != nil {
		return err
	}
	c.state = stateAuthenticated
	c.log.Log(logger.Success, "HTTP login completed")
	return nil
}

// FetchContext loads the reservation page for the target date and extracts
// the form and the candidate slots. When the page yields zero slots and a
// secondary data endpoint is configured, that endpoint is queried exactly
// once and its slots replace the page's list.
func (c *HTTPClient) FetchContext(ctx context.Context, target booking.TargetDate) (*Context, error) {
	if c.state != stateAuthenticated {
		return nil, fmt.Errorf("fetch context: session is not authenticated")
	}
	rs := c.settings.Endpoints.ReservationPage
	pageURL := rs.URL
	if pageURL == "" {
		resolved, err := c.resolveURL(rs.Path, "reservation.html")
		if err != nil {
			return nil, err
		}
		pageURL = resolved
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, &booking.ConfigurationError{Reason: fmt.Sprintf("invalid reservation page URL %q", pageURL)}
	}
	if rs.DateQueryParam != "" {
		q := u.Query()
		q.Set(rs.DateQueryParam, target.Request)
		u.RawQuery = q.Encode()
	}

	c.log.Log(logger.Step, fmt.Sprintf("Loading slots for %s", target.Display))
	body, err := c.request(ctx, "fetch reservation page", http.MethodGet, u.String(), c.htmlHeaders(), nil)
	if err != nil {
		return nil, err
	}

	form := booking.EmptyForm()
	var slots []booking.Slot
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		form, slots = extract.Page(doc, c.cfg.Courts.Names, c.settings.Selectors)
	}

	if len(slots) == 0 && rs.DataEndpoint != "" {
		slots, err = c.fetchFromDataEndpoint(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	c.log.Log(logger.Info, fmt.Sprintf("%d available slot(s) retrieved", len(slots)))
	c.state = stateContextFetched
	return &Context{Form: form, Slots: slots, Target: target}, nil
}

// fetchFromDataEndpoint is the second fetch stage. It runs at most once per
// run and its result fully replaces the page's slot list.
func (c *HTTPClient) fetchFromDataEndpoint(ctx context.Context, target booking.TargetDate) ([]booking.Slot, error) {
	rs := c.settings.Endpoints.ReservationPage
	endpoint, err := c.resolveURL(rs.DataEndpoint, "")
	if err != nil {
		return nil, err
	}

	params := map[string]string{}
	for k, v := range rs.DataStaticParams {
		params[k] = v
	}
	dateParam := rs.DataDateParam
	if dateParam == "" {
		dateParam = rs.DateQueryParam
	}
	if dateParam == "" {
		dateParam = "date"
	}
	params[dateParam] = target.DataEndpoint

	headers := rs.DataHeaders
	if headers == nil {
		headers = map[string]string{"Accept": "application/json, text/javascript, */*;q=0.1"}
	}

	method := strings.ToUpper(rs.DataMethod)
	var body []byte
	if method == "" || method == http.MethodGet {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, &booking.ConfigurationError{Reason: fmt.Sprintf("invalid data endpoint %q", rs.DataEndpoint)}
		}
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		body, err = c.request(ctx, "fetch data endpoint", http.MethodGet, u.String(), headers, nil)
		if err != nil {
			return nil, err
		}
	} else {
		body, err = c.requestForm(ctx, "fetch data endpoint", method, endpoint, headers, params)
		if err != nil {
			return nil, err
		}
	}

	if rs.DataResponseType == "html" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, nil
		}
		return extract.Slots(doc, c.cfg.Courts.Names, c.settings.Selectors), nil
	}
	return extract.SlotsFromPayload(body, c.cfg.Courts.Names), nil
}

// Submit books the selected slot. The harvested form fields form the base
// payload and the slot, date, test-mode and partner fields are overlaid. In
// test mode the network write is skipped entirely.
func (c *HTTPClient) Submit(ctx context.Context, reservation *Context, slot booking.Slot) error {
	if c.state != stateContextFetched {
		return fmt.Errorf("submit: reservation context has not been fetched")
	}
	fs := c.settings.Endpoints.Finalize

	action := fs.URL
	if action == "" && reservation.Form.Action != "" {
		resolved, err := c.resolveURL(reservation.Form.Action, "")
		if err != nil {
			return err
		}
		action = resolved
	}
	if action == "" && fs.Path != "" {
		resolved, err := c.resolveURL(fs.Path, "")
		if err != nil {
			return err
		}
		action = resolved
	}
	if action == "" {
		resolved, err := c.resolveURL("reservation.html", "")
		if err != nil {
			return err
		}
		action = resolved
	}

	method := strings.ToUpper(firstNonEmpty(fs.Method, reservation.Form.Method, http.MethodPost))
	payload := reservation.Form.CloneFields()
	fields := fs.Fields
	if fields.Court != "" {
		payload[fields.Court] = slot.CourtID
	}
	if fields.Slot != "" && slot.SlotID != "" {
		payload[fields.Slot] = slot.SlotID
	}
	if fields.Hour != "" {
		payload[fields.Hour] = slot.Hour
	}
	if fields.Date != "" {
		payload[fields.Date] = reservation.Target.Request
	}
	if fields.TestMode != "" && c.cfg.TestMode {
		payload[fields.TestMode] = "1"
	}
	if fields.Partner != "" {
		for _, partner := range c.cfg.Partners {
			payload[partnerFieldName(fields.Partner, partner)] = partner.PlayerID
		}
	}

	c.log.Log(logger.Step, "Sending the reservation form")
	if c.cfg.TestMode {
		c.log.Log(logger.Info, "Test mode enabled, the final network write was skipped")
		c.state = stateSubmitted
		return nil
	}

	var err error
	switch {
	case method == http.MethodGet:
		u, parseErr := url.Parse(action)
		if parseErr != nil {
			return &booking.ConfigurationError{Reason: fmt.Sprintf("invalid submission URL %q", action)}
		}
		q := u.Query()
		for k, v := range payload {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		_, err = c.request(ctx, "submit reservation", http.MethodGet, u.String(), fs.Headers, nil)
	case fs.Encoding == "json":
		_, err = c.requestJSON(ctx, "submit reservation", method, action, fs.Headers, payload)
	default:
		_, err = c.requestForm(ctx, "submit reservation", method, action, fs.Headers, payload)
	}
	if err != nil {
		return err
	}
	c.state = stateSubmitted
	c.log.Log(logger.Success, "Reservation submitted over HTTP")
	return nil
}

// resolveURL resolves ref against the configured base URL. fallback is used
// when ref is empty.
func (c *HTTPClient) resolveURL(ref, fallback string) (string, error) {
	if ref == "" {
		ref = fallback
	}
	base := c.settings.BaseURL
	if base == "" {
		base = c.cfg.MemberURL
	}
	if base == "" {
		return "", &booking.ConfigurationError{Reason: "no member base URL configured"}
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", &booking.ConfigurationError{Reason: fmt.Sprintf("invalid base URL %q", base)}
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", &booking.ConfigurationError{Reason: fmt.Sprintf("invalid URL %q", ref)}
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func (c *HTTPClient) htmlHeaders() map[string]string {
	headers := map[string]string{}
	for k, v := range c.settings.HTMLHeaders {
		headers[k] = v
	}
	return headers
}

func (c *HTTPClient) requestForm(ctx context.Context, op, method, rawURL string, headers, payload map[string]string) ([]byte, error) {
	form := url.Values{}
	for k, v := range payload {
		form.Set(k, v)
	}
	merged := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.request(ctx, op, method, rawURL, merged, strings.NewReader(form.Encode()))
}

func (c *HTTPClient) requestJSON(ctx context.Context, op, method, rawURL string, headers, payload map[string]string) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.request(ctx, op, method, rawURL, merged, bytes.NewReader(encoded))
}

// request performs one HTTP call. Transport errors and statuses of 400 and
// above become NetworkErrors carrying the operation name only; bodies are
// never included so credentials cannot leak into logs.
func (c *HTTPClient) request(ctx context.Context, op, method, rawURL string, headers map[string]string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &booking.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.settings.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &booking.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &booking.NetworkError{
			Op:  op,
			Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &booking.NetworkError{Op: op, Err: err}
	}
	return data, nil
}

// partnerFieldName substitutes a partner's position into the configured name
// template. {position} and {index} are zero-based, {number} is one-based.
func partnerFieldName(template string, partner booking.Partner) string {
	name := strings.ReplaceAll(template, "{position}", strconv.Itoa(partner.Position))
	name = strings.ReplaceAll(name, "{index}", strconv.Itoa(partner.Position))
	name = strings.ReplaceAll(name, "{number}", strconv.Itoa(partner.Position+1))
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
