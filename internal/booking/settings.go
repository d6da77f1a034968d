package booking

// Settings is the effective endpoint/selector configuration for a run. It is
// produced once at run start by merging DefaultSettings with the operator's
// overrides and is never mutated afterwards.
type Settings struct {
	Mode        string            `yaml:"mode,omitempty"` // "live" or "mock"
	BaseURL     string            `yaml:"baseUrl,omitempty"`
	UserAgent   string            `yaml:"userAgent,omitempty"`
	HTMLHeaders map[string]string `yaml:"htmlHeaders,omitempty"`
	Endpoints   EndpointSettings  `yaml:"endpoints,omitempty"`
	Selectors   SelectorSettings  `yaml:"selectors,omitempty"`
	Mock        *MockSettings     `yaml:"mock,omitempty"`
}

// EndpointSettings groups the per-endpoint settings.
type EndpointSettings struct {
	Login           LoginSettings           `yaml:"login,omitempty"`
	ReservationPage ReservationPageSettings `yaml:"reservationPage,omitempty"`
	Finalize        FinalizeSettings        `yaml:"finalize,omitempty"`
}

// LoginSettings describes the authentication endpoint.
type LoginSettings struct {
	URL              string            `yaml:"url,omitempty"`
	Method           string            `yaml:"method,omitempty"`
	FetchInitialPage *bool             `yaml:"fetchInitialPage,omitempty"`
	FormSelector     string            `yaml:"formSelector,omitempty"`
	UsernameField    string            `yaml:"usernameField,omitempty"`
	PasswordField    string            `yaml:"passwordField,omitempty"`
	StaticFields     map[string]string `yaml:"staticFields,omitempty"`
	Encoding         string            `yaml:"encoding,omitempty"` // "form" or "json"
}

// ReservationPageSettings describes the reservation page and its optional
// secondary data endpoint.
type ReservationPageSettings struct {
	URL            string `yaml:"url,omitempty"`
	Path           string `yaml:"path,omitempty"`
	Method         string `yaml:"method,omitempty"`
	DateFormat     string `yaml:"dateFormat,omitempty"`
	DateQueryParam string `yaml:"dateQueryParam,omitempty"`

	DataEndpoint     string            `yaml:"dataEndpoint,omitempty"`
	DataMethod       string            `yaml:"dataMethod,omitempty"`
	DataDateParam    string            `yaml:"dataDateParam,omitempty"`
	DataDateFormat   string            `yaml:"dataDateFormat,omitempty"`
	DataStaticParams map[string]string `yaml:"dataStaticParams,omitempty"`
	DataHeaders      map[string]string `yaml:"dataHeaders,omitempty"`
	DataResponseType string            `yaml:"dataResponseType,omitempty"` // "json" or "html"
}

// FinalizeSettings describes the submission endpoint.
type FinalizeSettings struct {
	URL      string            `yaml:"url,omitempty"`
	Path     string            `yaml:"path,omitempty"`
	Method   string            `yaml:"method,omitempty"`
	Encoding string            `yaml:"encoding,omitempty"` // "form", "json" or GET via method
	Headers  map[string]string `yaml:"headers,omitempty"`
	Fields   FieldMappings     `yaml:"fields,omitempty"`
}

// FieldMappings maps logical submission fields to the site's field names.
// Partner is a name template with {position}, {index} and {number}
// placeholders.
type FieldMappings struct {
	Court    string `yaml:"court,omitempty"`
	Slot     string `yaml:"slot,omitempty"`
	Hour     string `yaml:"hour,omitempty"`
	Date     string `yaml:"date,omitempty"`
	TestMode string `yaml:"testMode,omitempty"`
	Partner  string `yaml:"partner,omitempty"`
}

// SelectorSettings holds the markup extraction rules.
type SelectorSettings struct {
	ReservationForm    []string `yaml:"reservationForm,omitempty"`
	Court              string   `yaml:"court,omitempty"`
	CourtIDAttr        string   `yaml:"courtIdAttr,omitempty"`
	CourtName          string   `yaml:"courtName,omitempty"`
	SlotButton         string   `yaml:"slotButton,omitempty"`
	SlotIDAttr         string   `yaml:"slotIdAttr,omitempty"`
	UnavailableClasses []string `yaml:"unavailableClasses,omitempty"`
}

// MockSettings supplies the fixed slot list consumed in mock mode.
type MockSettings struct {
	AvailableSlots   []Slot `yaml:"availableSlots,omitempty"`
	OnSuccessMessage string `yaml:"onSuccessMessage,omitempty"`
}

// DefaultSettings returns the built-in settings, matching the markup and
// field names of the reservation site family this tool targets.
func DefaultSettings() Settings {
	fetchInitial := true
	return Settings{
		Mode:      "live",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
		HTMLHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
		},
		Endpoints: EndpointSettings{
			Login: LoginSettings{
				Method:           "POST",
				FetchInitialPage: &fetchInitial,
				FormSelector:     "form",
				UsernameField:    "email",
				PasswordField:    "pass",
				Encoding:         "form",
			},
			ReservationPage: ReservationPageSettings{
				Path:           "reservation.html",
				Method:         "GET",
				DateFormat:     "DD/MM/YYYY",
				DateQueryParam: "date",
			},
			Finalize: FinalizeSettings{
				Method:   "POST",
				Encoding: "form",
				Fields: FieldMappings{
					Court:    "idcourt",
					Slot:     "idhoraire",
					Hour:     "heure",
					Date:     "date",
					TestMode: "test",
					Partner:  "idplayer_{position}",
				},
			},
		},
		Selectors: SelectorSettings{
			ReservationForm: []string{
				"form#formReservation",
				"form#reservation-form",
				`form[action*="reservation"]`,
				`form[name="formReservation"]`,
			},
			Court:              ".bloccourt",
			CourtIDAttr:        "data-idcourt",
			CourtName:          ".blocCourt_title, .blocCourt_top h3, .court-name",
			SlotButton:         ".blocCourt_container_btn-creneau button.btn_creneau",
			SlotIDAttr:         "idhoraire",
			UnavailableClasses: []string{"disabled", "btn_creneau__indispo"},
		},
	}
}

// Merge combines base settings with an override: struct fields merge
// recursively, maps merge key-wise, slices and scalars replace wholesale when
// the override sets them. Neither input is mutated.
func Merge(base, override Settings) Settings {
	out := base
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.BaseURL != "" {
		out.BaseURL = override.BaseURL
	}
	if override.UserAgent != "" {
		out.UserAgent = override.UserAgent
	}
	out.HTMLHeaders = mergeStringMap(base.HTMLHeaders, override.HTMLHeaders)
	out.Endpoints.Login = mergeLogin(base.Endpoints.Login, override.Endpoints.Login)
	out.Endpoints.ReservationPage = mergeReservationPage(base.Endpoints.ReservationPage, override.Endpoints.ReservationPage)
	out.Endpoints.Finalize = mergeFinalize(base.Endpoints.Finalize, override.Endpoints.Finalize)
	out.Selectors = mergeSelectors(base.Selectors, override.Selectors)
	if override.Mock != nil {
		out.Mock = override.Mock
	}
	return out
}

func mergeLogin(base, override LoginSettings) LoginSettings {
	out := base
	if override.URL != "" {
		out.URL = override.URL
	}
	if override.Method != "" {
		out.Method = override.Method
	}
	if override.FetchInitialPage != nil {
		out.FetchInitialPage = override.FetchInitialPage
	}
	if override.FormSelector != "" {
		out.FormSelector = override.FormSelector
	}
	if override.UsernameField != "" {
		out.UsernameField = override.UsernameField
	}
	if override.PasswordField != "" {
		out.PasswordField = override.PasswordField
	}
	out.StaticFields = mergeStringMap(base.StaticFields, override.StaticFields)
	if override.Encoding != "" {
		out.Encoding = override.Encoding
	}
	return out
}

func mergeReservationPage(base, override ReservationPageSettings) ReservationPageSettings {
	out := base
	if override.URL != "" {
		out.URL = override.URL
	}
	if override.Path != "" {
		out.Path = override.Path
	}
	if override.Method != "" {
		out.Method = override.Method
	}
	if override.DateFormat != "" {
		out.DateFormat = override.DateFormat
	}
	if override.DateQueryParam != "" {
		out.DateQueryParam = override.DateQueryParam
	}
	if override.DataEndpoint != "" {
		out.DataEndpoint = override.DataEndpoint
	}
	if override.DataMethod != "" {
		out.DataMethod = override.DataMethod
	}
	if override.DataDateParam != "" {
		out.DataDateParam = override.DataDateParam
	}
	if override.DataDateFormat != "" {
		out.DataDateFormat = override.DataDateFormat
	}
	out.DataStaticParams = mergeStringMap(base.DataStaticParams, override.DataStaticParams)
	out.DataHeaders = mergeStringMap(base.DataHeaders, override.DataHeaders)
	if override.DataResponseType != "" {
		out.DataResponseType = override.DataResponseType
	}
	return out
}

func mergeFinalize(base, override FinalizeSettings) FinalizeSettings {
	out := base
	if override.URL != "" {
		out.URL = override.URL
	}
	if override.Path != "" {
		out.Path = override.Path
	}
	if override.Method != "" {
		out.Method = override.Method
	}
	if override.Encoding != "" {
		out.Encoding = override.Encoding
	}
	out.Headers = mergeStringMap(base.Headers, override.Headers)
	if override.Fields.Court != "" {
		out.Fields.Court = override.Fields.Court
	}
	if override.Fields.Slot != "" {
		out.Fields.Slot = override.Fields.Slot
	}
	if override.Fields.Hour != "" {
		out.Fields.Hour = override.Fields.Hour
	}
	if override.Fields.Date != "" {
		out.Fields.Date = override.Fields.Date
	}
	if override.Fields.TestMode != "" {
		out.Fields.TestMode = override.Fields.TestMode
	}
	if override.Fields.Partner != "" {
		out.Fields.Partner = override.Fields.Partner
	}
	return out
}

func mergeSelectors(base, override SelectorSettings) SelectorSettings {
	out := base
	if override.ReservationForm != nil {
		out.ReservationForm = override.ReservationForm
	}
	if override.Court != "" {
		out.Court = override.Court
	}
	if override.CourtIDAttr != "" {
		out.CourtIDAttr = override.CourtIDAttr
	}
	if override.CourtName != "" {
		out.CourtName = override.CourtName
	}
	if override.SlotButton != "" {
		out.SlotButton = override.SlotButton
	}
	if override.SlotIDAttr != "" {
		out.SlotIDAttr = override.SlotIDAttr
	}
	if override.UnavailableClasses != nil {
		out.UnavailableClasses = override.UnavailableClasses
	}
	return out
}

func mergeStringMap(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
