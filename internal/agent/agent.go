// Package agent содержит ИИ-агента, который переводит текстовые просьбы
// пользователя в действия плеера через инструменты Claude API
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hazadus/go-vibeplay/internal/fetch"
	"github.com/hazadus/go-vibeplay/internal/state"
)

const apiURL = "https://api.anthropic.com/v1/messages"

// Системный промпт и описания инструментов написаны по-английски:
// так модель работает заметно надежнее
const systemPrompt = `You are the AI brain of vibeplay, a TUI-based YouTube music player. Your job is to interpret user commands and control the player using tools.

You receive the current player state (now playing, queue) with each message. Use the tools to respond to the user's intent. Always use tools — never respond with just text.

Guidelines:
- For YouTube URLs, use play_url
- For song/artist names, use search_and_queue with good search queries
- For vibe/mood requests, translate the mood into multiple specific search queries
- When replacing the queue, pick 4-6 diverse but fitting search queries
- Keep search queries specific: include artist names, song names, or descriptive terms like "chill lo-fi beats" rather than vague terms`

// SearchFunc ищет треки; выделена в тип для тестов
type SearchFunc func(ctx context.Context, query string, limit int) ([]fetch.SearchResult, error)

// Agent обрабатывает текстовый ввод пользователя через Claude API
type Agent struct {
	client       *http.Client
	apiURL       string
	apiKey       string
	model        string
	state        *state.State
	orchestrator *fetch.Orchestrator
	search       SearchFunc
}

// New создает агента
func New(apiKey, model string, st *state.State, orchestrator *fetch.Orchestrator) *Agent {
	return &Agent{
		client:       &http.Client{Timeout: 60 * time.Second},
		apiURL:       apiURL,
		apiKey:       apiKey,
		model:        model,
		state:        st,
		orchestrator: orchestrator,
		search:       fetch.Search,
	}
}

// HandleInput обрабатывает одну просьбу пользователя: снимает контекст,
// запрашивает у модели вызовы инструментов и выполняет их по порядку.
// Вызывается в отдельной горутине, статус агента виден в интерфейсе.
func (a *Agent) HandleInput(ctx context.Context, input string) error {
	log.Printf("Агент обрабатывает ввод: %s", input)

	stateContext := buildContext(a.state.Snapshot())

	a.state.SetAgent(state.AgentThinking, "")
	defer a.state.SetAgent(state.AgentIdle, "")

	toolCalls, err := a.callAPI(ctx, input, stateContext)
	if err != nil {
		a.state.SetStatusMessage(fmt.Sprintf("Ошибка агента: %v", err))
		return err
	}
	log.Printf("Агент получил %d вызовов инструментов", len(toolCalls))

	for _, call := range toolCalls {
		a.state.SetAgent(state.AgentActing, call.Name)
		if err := a.executeTool(ctx, call.Name, call.Input); err != nil {
			log.Printf("Ошибка инструмента %s: %v", call.Name, err)
			a.state.SetStatusMessage(fmt.Sprintf("Ошибка агента: %v", err))
			return err
		}
	}

	return nil
}

// toolDef описывает инструмент для API
type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func toolDefinitions() []toolDef {
	return []toolDef{
		{
			Name:        "play_url",
			Description: "Download and play a YouTube URL immediately. Use when the user provides a direct YouTube link.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string", "description": "YouTube URL to play"},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "search_and_queue",
			Description: "Search YouTube and add results to the queue. Use for song names, artist requests, or mood-based queries.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "YouTube search query"},
					"count": map[string]any{"type": "integer", "description": "Number of results to queue (1-5)", "default": 3},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "replace_queue",
			Description: "Clear the current queue and populate with new searches. Use when the user wants to change the vibe or mood entirely.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"queries": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of YouTube search queries to populate the new queue",
					},
				},
				"required": []string{"queries"},
			},
		},
		{
			Name:        "skip",
			Description: "Skip the currently playing song.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        "pause",
			Description: "Pause playback.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        "resume",
			Description: "Resume playback.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        "set_volume",
			Description: "Set the playback volume.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"level": map[string]any{"type": "integer", "description": "Volume level 0-100"},
				},
				"required": []string{"level"},
			},
		},
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Tools     []toolDef    `json:"tools"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// toolCall — один вызов инструмента из ответа модели
type toolCall struct {
	Name  string
	Input json.RawMessage
}

// callAPI запрашивает у модели вызовы инструментов для ввода пользователя
func (a *Agent) callAPI(ctx context.Context, input, stateContext string) ([]toolCall, error) {
	body, err := json.Marshal(apiRequest{
		Model:     a.model,
		MaxTokens: 1024,
		System:    systemPrompt + "\n\nCurrent state:\n" + stateContext,
		Tools:     toolDefinitions(),
		Messages: []apiMessage{
			{Role: "user", Content: input},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка обращения к API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ошибка API (%d): %s", resp.StatusCode, string(errText))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа API: %w", err)
	}

	var calls []toolCall
	for _, block := range apiResp.Content {
		if block.Type == "tool_use" {
			calls = append(calls, toolCall{Name: block.Name, Input: block.Input})
		}
	}
	if len(calls) == 0 {
		log.Printf("Модель не вернула вызовов инструментов")
	}
	return calls, nil
}

// Типизированные входы инструментов
type playURLInput struct {
	URL string `json:"url"`
}

type searchInput struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type replaceInput struct {
	Queries []string `json:"queries"`
}

type volumeInput struct {
	Level int `json:"level"`
}

// executeTool выполняет один вызов инструмента
func (a *Agent) executeTool(ctx context.Context, name string, input json.RawMessage) error {
	switch name {
	case "play_url":
		var in playURLInput
		if err := json.Unmarshal(input, &in); err != nil {
			return fmt.Errorf("ошибка разбора входа play_url: %w", err)
		}
		a.orchestrator.PlayURL(in.URL)

	case "search_and_queue":
		var in searchInput
		if err := json.Unmarshal(input, &in); err != nil {
			return fmt.Errorf("ошибка разбора входа search_and_queue: %w", err)
		}
		if in.Count <= 0 {
			in.Count = 3
		}
		results, err := a.search(ctx, in.Query, in.Count)
		if err != nil {
			return err
		}
		for _, result := range results {
			a.orchestrator.EnqueueURL(result.URL)
		}

	case "replace_queue":
		var in replaceInput
		if err := json.Unmarshal(input, &in); err != nil {
			return fmt.Errorf("ошибка разбора входа replace_queue: %w", err)
		}
		a.state.ClearQueue()
		for _, query := range in.Queries {
			results, err := a.search(ctx, query, 2)
			if err != nil {
				return err
			}
			for _, result := range results {
				a.orchestrator.EnqueueURL(result.URL)
			}
		}

	case "skip":
		a.state.Enqueue(state.SkipCommand{})

	case "pause":
		a.state.Enqueue(state.PauseCommand{})

	case "resume":
		a.state.Enqueue(state.ResumeCommand{})

	case "set_volume":
		var in volumeInput
		if err := json.Unmarshal(input, &in); err != nil {
			return fmt.Errorf("ошибка разбора входа set_volume: %w", err)
		}
		a.state.Enqueue(state.SetVolumeCommand{Level: in.Level})

	default:
		log.Printf("Неизвестный инструмент: %s", name)
	}

	return nil
}

// buildContext собирает текстовый снимок состояния для модели
func buildContext(snap state.Snapshot) string {
	var b strings.Builder

	if snap.Current != nil {
		fmt.Fprintf(&b, "Now playing: %s - %s\n", snap.Current.Track.Title, snap.Current.Track.Artist)
	} else {
		b.WriteString("Now playing: nothing\n")
	}

	if len(snap.Library) == 0 {
		b.WriteString("Library: empty\n")
	} else {
		b.WriteString("Library:\n")
		for i, track := range snap.Library {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, track.Title)
		}
	}

	if len(snap.Queue) == 0 {
		b.WriteString("Queue: empty\n")
	} else {
		b.WriteString("Queue:\n")
		for i, track := range snap.Queue {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, track.Title, track.Status)
		}
	}

	fmt.Fprintf(&b, "Volume: %d\n", snap.Volume)
	if snap.Paused {
		b.WriteString("Paused: yes\n")
	} else {
		b.WriteString("Paused: no\n")
	}

	return b.String()
}
