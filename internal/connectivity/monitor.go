package connectivity

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-resty/resty/v2"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/websocket"
)

const probeTimeout = 5 * time.Second

// Monitor feeds State from an HTTP probe. It probes once on Start and then
// on a fixed schedule, broadcasting every transition on the hub.
type Monitor struct {
	state     *State
	client    *resty.Client
	probeURL  string
	interval  time.Duration
	scheduler *gocron.Scheduler
	cancelSub func()
}

// NewMonitor wires a monitor. The probe client talks to the network
// directly so that gateway placeholders can never mask an outage.
func NewMonitor(state *State, probeURL string, interval time.Duration, hub *websocket.Hub) *Monitor {
	client := resty.New()
	client.SetTimeout(probeTimeout)
	m := &Monitor{
		state:    state,
		client:   client,
		probeURL: probeURL,
		interval: interval,
	}
	m.cancelSub = state.Subscribe(func(online bool) {
		if online {
			log.Println("Connectivity restored")
		} else {
			log.Println("Connectivity lost, serving from offline data")
		}
		hub.BroadcastJSON(models.ConnectivityUpdate{Type: "connectivity", Online: online})
	})
	return m
}

// Probe checks the probe URL and records the result. Any HTTP answer below
// 500 counts as online.
func (m *Monitor) Probe(ctx context.Context) bool {
	resp, err := m.client.R().SetContext(ctx).Head(m.probeURL)
	online := err == nil && resp.StatusCode() < http.StatusInternalServerError
	if err != nil {
		log.Printf("Connectivity probe failed: %v", err)
	}
	m.state.Set(online)
	return online
}

// Start runs the initial probe synchronously and schedules the rest.
func (m *Monitor) Start(ctx context.Context) error {
	m.Probe(ctx)

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(m.interval).WaitForSchedule().Do(func() {
		m.Probe(context.Background())
	})
	if err != nil {
		return err
	}
	s.StartAsync()
	m.scheduler = s
	return nil
}

func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	m.cancelSub()
}
