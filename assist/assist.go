package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"krishimitra/globals"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Responder answers a farmer's question with advice text.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

var cannedAdvice = []string{
	"Rotate legumes with cereals to restore soil nitrogen between seasons.",
	"Irrigate early in the morning to cut evaporation losses.",
	"Check the underside of leaves weekly; most pests settle there first.",
	"Mulch around young plants to hold moisture through dry spells.",
	"Test soil pH before adding lime or sulphur amendments.",
	"Stagger sowing dates by a week to spread harvest-time workload.",
}

type message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Service relays farmer questions over a websocket to the configured
// responder, falling back to canned advice when the upstream is down.
type Service struct {
	Responder Responder
}

func NewService(responder Responder) *Service {
	return &Service{Responder: responder}
}

// Chat upgrades the connection and serves one advice exchange per
// incoming message until the client hangs up.
func (s *Service) Chat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Chat upgrade error:", err)
		return
	}
	defer conn.Close()

	for {
		var in message
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if strings.TrimSpace(in.Text) == "" {
			conn.WriteJSON(message{Type: "error", Text: "Ask a question first."})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		answer, err := s.Responder.Respond(ctx, in.Text)
		cancel()
		if err != nil {
			log.Println("Chat responder error:", err)
			answer = cannedAdvice[rand.Intn(len(cannedAdvice))]
		}

		if err := conn.WriteJSON(message{Type: "advice", Text: answer}); err != nil {
			return
		}
	}
}

// HostedResponder calls an external text-completion endpoint.
type HostedResponder struct {
	BaseURL string
	Client  *http.Client
}

func NewHostedResponder() *HostedResponder {
	return &HostedResponder{
		BaseURL: globals.Getenv("ADVICE_URL", "http://localhost:8001"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *HostedResponder) Respond(ctx context.Context, question string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"prompt": question})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/v1/complete", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice upstream returned %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", fmt.Errorf("advice upstream returned empty response")
	}
	return out.Text, nil
}
