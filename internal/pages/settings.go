package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"context"
	"golang.org/x/sync/errgroup"
)

type SettingsBackend interface {
	ListServers(ctx context.Context) ([]api.Server, error)
	UpdateServer(ctx context.Context, id uint, patch api.ServerPatch) (api.Server, error)
	GetSettings(ctx context.Context) (api.Settings, error)
	UpdateSettings(ctx context.Context, s api.Settings) error
}

// ServerDraft is a server row opened for editing, credentials decoded.
type ServerDraft struct {
	Name     string
	APIURL   string
	Username string
	Password string
}

func (d ServerDraft) patch() api.ServerPatch {
	return api.ServerPatch{
		Name:        d.Name,
		APIURL:      d.APIURL,
		Credentials: api.Credentials{Username: d.Username, Password: d.Password}.Encode(),
	}
}

// Settings edits the payment card number and the VPN panel connections.
type Settings struct {
	base
	backend  SettingsBackend
	servers  []api.Server
	settings api.Settings
	card     string
	drafts   map[uint]*ServerDraft
	reveal   map[uint]bool
}

func NewSettings(b SettingsBackend) *Settings {
	return &Settings{backend: b, drafts: make(map[uint]*ServerDraft), reveal: make(map[uint]bool)}
}

func (s *Settings) Mount(ctx context.Context) error {
	if s.takeFresh() {
		return nil
	}
	return s.Load(ctx)
}

// Load fetches servers and settings concurrently. The page shows data only
// when both succeed.
func (s *Settings) Load(ctx context.Context) error {
	gen := s.beginLoad()
	var (
		servers  []api.Server
		settings api.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		servers, err = s.backend.ListServers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.backend.GetSettings(gctx)
		return err
	})
	err := g.Wait()
	s.finishLoad(gen, err, func() {
		if err != nil {
			servers, settings = nil, api.Settings{}
		}
		s.servers = servers
		s.settings = settings
		s.card = settings.AdminCardNumber
	})
	return err
}

func (s *Settings) SaveCard(ctx context.Context, card string) error {
	s.mu.Lock()
	s.card = card
	s.mu.Unlock()
	return s.submit(func() error {
		return s.backend.UpdateSettings(ctx, api.Settings{AdminCardNumber: card})
	}, func() error { return s.Load(ctx) }, "Card number updated", "Failed to update card number")
}

func (s *Settings) StartEdit(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, srv := range s.servers {
		if srv.ID == id {
			creds := api.DecodeCredentials(srv.Credentials)
			s.drafts[id] = &ServerDraft{Name: srv.Name, APIURL: srv.APIURL, Username: creds.Username, Password: creds.Password}
			return true
		}
	}
	return false
}

func (s *Settings) Edit(id uint, d ServerDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return false
	}
	s.drafts[id] = &d
	return true
}

func (s *Settings) Cancel(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

func (s *Settings) SaveServer(ctx context.Context, id uint) error {
	s.mu.Lock()
	d, ok := s.drafts[id]
	var draft ServerDraft
	if ok {
		draft = *d
	}
	s.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}
	return s.submit(func() error {
		if _, err := s.backend.UpdateServer(ctx, id, draft.patch()); err != nil {
			return err
		}
		s.Cancel(id)
		return nil
	}, func() error { return s.Load(ctx) }, "Server updated successfully", "Failed to update server")
}

// TogglePassword flips whether row id shows its password in clear.
func (s *Settings) TogglePassword(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reveal[id] = !s.reveal[id]
}

type ServerRow struct {
	api.Server
	Username string
	Password string
	Reveal   bool
	Editing  bool
	Draft    ServerDraft
}

type SettingsView struct {
	Phase      Phase
	Failed     bool
	CardNumber string
	BotName    string
	Servers    []ServerRow
}

func (s *Settings) View() SettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SettingsView{Phase: s.phase, Failed: s.failed, CardNumber: s.card, BotName: s.settings.BotName}
	for _, srv := range s.servers {
		creds := api.DecodeCredentials(srv.Credentials)
		row := ServerRow{Server: srv, Username: creds.Username, Password: creds.Password, Reveal: s.reveal[srv.ID]}
		if d, ok := s.drafts[srv.ID]; ok {
			row.Editing = true
			row.Draft = *d
		}
		v.Servers = append(v.Servers, row)
	}
	return v
}
