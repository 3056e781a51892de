package deposit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
	sessionmock "github.com/superquinquin/consigne-desk/pkg/session/mock"
)

const storeKey = "consigne-session"

var (
	marine   = identity.Normalize(1111, 1615, "1615 - BAGLIN, Marine")
	romain   = identity.Normalize(2222, 615, "615 - CAVAREC, Romain")
	enercoop = identity.Normalize(3333, 2615, "2615 - Enercoop HDF")
)

type product struct {
	id         int
	name       string
	returnable bool
	value      float64
}

type line struct {
	id       int
	product  product
	canceled bool
}

type fakeDeposit struct {
	id                int
	providerPartnerID int
	receiverPartnerID int
	closed            bool
	lines             []*line
}

// fakeBackend mimics the consigne API: failures are envelopes answered with
// HTTP 200.
type fakeBackend struct {
	mu sync.Mutex

	nextDepositID int
	nextLineID    int
	deposits      map[int]*fakeDeposit
	products      map[string]product

	calls     map[string]int
	createErr *envelope
	lastBody  map[string]int
}

type envelope struct {
	Status  int    `json:"status"`
	Reasons string `json:"reasons"`
	Data    any    `json:"data,omitempty"`
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextDepositID: 42,
		nextLineID:    1,
		deposits:      make(map[int]*fakeDeposit),
		products: map[string]product{
			"3760123450017": {id: 5, name: "Bocal 1L", returnable: true, value: 0.5},
			"3760123450024": {id: 6, name: "Canette", returnable: false},
			"12/34":         {id: 7, name: "Bouteille 75cl", returnable: true, value: 0.2},
		},
		calls: make(map[string]int),
	}
}

func (b *fakeBackend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *fakeBackend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func (b *fakeBackend) LastCreateBody() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

func (b *fakeBackend) CloseRemotely(depositID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deposits[depositID].closed = true
}

func (b *fakeBackend) Forget(depositID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.deposits, depositID)
}

func (b *fakeBackend) AddDeposit(d *fakeDeposit) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deposits[d.id] = d
}

func (b *fakeBackend) FailCreate(status int, reasons string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createErr = &envelope{Status: status, Reasons: reasons}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth_provider", b.route("auth", func(r *http.Request) envelope {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			return envelope{Status: 200, Data: map[string]any{"auth": false}}
		}
		return envelope{Status: 200, Data: map[string]any{
			"auth": true,
			"user": map[string]any{"user_name": req["username"], "user_code": "00025", "max_age": 1800},
		}}
	}))

	mux.HandleFunc("POST /search-user", b.route("search", func(r *http.Request) envelope {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		matches := [][]any{}
		if req["input"] == "Marine" {
			matches = append(matches, []any{1111, 1615, "1615 - BAGLIN, Marine"})
		}
		return envelope{Status: 200, Data: map[string]any{"matches": matches}}
	}))

	mux.HandleFunc("GET /get-shifts-users", b.route("shift", func(*http.Request) envelope {
		return envelope{Status: 200, Data: map[string]any{"users": [][]any{
			{1111, 1615, "1615 - BAGLIN, Marine"},
			{3333, 2615, "2615 - Enercoop HDF"},
		}}}
	}))

	mux.HandleFunc("POST /deposit/create", b.route("create", func(r *http.Request) envelope {
		var req map[string]int
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.lastBody = req
		if b.createErr != nil {
			return *b.createErr
		}
		d := &fakeDeposit{
			id:                b.nextDepositID,
			providerPartnerID: req["provider_partner_id"],
			receiverPartnerID: req["receiver_partner_id"],
		}
		b.deposits[d.id] = d
		b.nextDepositID++
		return envelope{Status: 200, Data: map[string]any{"deposit_id": d.id}}
	}))

	mux.HandleFunc("GET /deposit/{id}", b.route("get", func(r *http.Request) envelope {
		d, env := b.lookup(r)
		if d == nil {
			return env
		}
		lines := make([]map[string]any, 0, len(d.lines))
		for _, l := range d.lines {
			lines = append(lines, lineRecord(d, l))
		}
		return envelope{Status: 200, Data: map[string]any{
			"deposit": map[string]any{
				"deposit_id": d.id, "provider_id": 1, "receiver_id": 2,
				"deposit_datetime": "2024-05-02T10:00:00", "closed": d.closed,
			},
			"provider":      userRecord(1, d.providerPartnerID),
			"receiver":      userRecord(2, d.receiverPartnerID),
			"deposit_lines": lines,
		}}
	}))

	mux.HandleFunc("GET /deposit/{id}/{line}", b.route("line", func(r *http.Request) envelope {
		d, env := b.lookup(r)
		if d == nil {
			return env
		}
		l := findLine(d, r.PathValue("line"))
		if l == nil {
			return envelope{Status: 404, Reasons: "unknown line"}
		}
		return envelope{Status: 200, Data: map[string]any{"deposit_lines": lineRecord(d, l)}}
	}))

	mux.HandleFunc("GET /deposit/{id}/return/{code}", b.route("return", func(r *http.Request) envelope {
		d, env := b.lookupOpen(r)
		if d == nil {
			return env
		}
		p, ok := b.products[r.PathValue("code")]
		if !ok {
			return envelope{Status: 404, Reasons: "Product " + r.PathValue("code") + " is not referenced"}
		}
		l := &line{id: b.nextLineID, product: p}
		b.nextLineID++
		d.lines = append(d.lines, l)
		data := map[string]any{
			"deposit_line_id": l.id, "name": p.name, "odoo_product_id": p.id + 100,
			"product_id": p.id, "returnable": p.returnable, "return_value": p.value,
		}
		return envelope{Status: 200, Data: data}
	}))

	mux.HandleFunc("GET /deposit/{id}/cancel/{line}", b.route("cancel", func(r *http.Request) envelope {
		d, env := b.lookupOpen(r)
		if d == nil {
			return env
		}
		l := findLine(d, r.PathValue("line"))
		if l == nil {
			return envelope{Status: 404, Reasons: "unknown line"}
		}
		l.canceled = true
		return envelope{Status: 200, Reasons: "OK"}
	}))

	mux.HandleFunc("GET /deposit/{id}/close", b.route("close", func(r *http.Request) envelope {
		d, env := b.lookupOpen(r)
		if d == nil {
			return env
		}
		d.closed = true
		return envelope{Status: 200, Reasons: "OK"}
	}))

	mux.HandleFunc("GET /deposit/{id}/ticket", b.route("ticket", func(r *http.Request) envelope {
		d, env := b.lookup(r)
		if d == nil {
			return env
		}
		return envelope{Status: 200, Reasons: "OK"}
	}))

	return mux
}

func (b *fakeBackend) route(name string, fn func(*http.Request) envelope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[name]++
		env := fn(r)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(env)
	}
}

func (b *fakeBackend) lookup(r *http.Request) (*fakeDeposit, envelope) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return nil, envelope{Status: 400, Reasons: "bad deposit id"}
	}
	d, ok := b.deposits[id]
	if !ok {
		return nil, envelope{Status: 404, Reasons: "unknown deposit"}
	}
	return d, envelope{}
}

func (b *fakeBackend) lookupOpen(r *http.Request) (*fakeDeposit, envelope) {
	d, env := b.lookup(r)
	if d == nil {
		return nil, env
	}
	if d.closed {
		return nil, envelope{Status: 409, Reasons: "deposit " + r.PathValue("id") + " already closed"}
	}
	return d, envelope{}
}

func findLine(d *fakeDeposit, raw string) *line {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	for _, l := range d.lines {
		if l.id == id {
			return l
		}
	}
	return nil
}

func lineRecord(d *fakeDeposit, l *line) map[string]any {
	return map[string]any{
		"deposit_line_id": l.id, "deposit_id": d.id, "product_id": l.product.id,
		"deposit_line_datetime": "2024-05-02T10:01:00", "canceled": l.canceled,
		"name": l.product.name, "returnable": l.product.returnable, "return_value": l.product.value,
	}
}

func userRecord(userID, partnerID int) map[string]any {
	names := map[int]string{
		1111: "1615 - BAGLIN, Marine",
		2222: "615 - CAVAREC, Romain",
		3333: "2615 - Enercoop HDF",
	}
	return map[string]any{"user_id": userID, "user_partner_id": partnerID, "user_code": partnerID / 10, "user_name": names[partnerID]}
}

type fixture struct {
	backend    *fakeBackend
	server     *httptest.Server
	repo       *sessionmock.Repository
	controller *deposit.Controller
}

func newFixture(t *testing.T, repoOpts []sessionmock.RepositoryOption, opts ...deposit.Option) *fixture {
	t.Helper()

	b := newFakeBackend()
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	client, err := consigne.NewClient(server.URL, consigne.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	repo := sessionmock.NewInMemRepository(repoOpts...)

	return &fixture{
		backend:    b,
		server:     server,
		repo:       repo,
		controller: deposit.NewController(client, session.NewStore(repo, storeKey), opts...),
	}
}

// newController builds another controller on the same backend and
// repository, as a second run of the command line would.
func (f *fixture) newController(t *testing.T, opts ...deposit.Option) *deposit.Controller {
	t.Helper()

	client, err := consigne.NewClient(f.server.URL, consigne.WithHTTPClient(f.server.Client()))
	require.NoError(t, err)

	return deposit.NewController(client, session.NewStore(f.repo, storeKey), opts...)
}

// openDeposit chooses marine and romain and opens a deposit.
func (f *fixture) openDeposit(t *testing.T) session.Session {
	t.Helper()

	_, err := f.controller.ChooseProvider(t.Context(), marine)
	require.NoError(t, err)
	_, err = f.controller.ChooseReceiver(t.Context(), romain)
	require.NoError(t, err)

	s, err := f.controller.Open(t.Context())
	require.NoError(t, err)

	return s
}

func (f *fixture) stored(t *testing.T) session.Session {
	t.Helper()

	s, _ := f.repo.Get(storeKey)
	return s
}

func intPtr(i int) *int {
	return &i
}
