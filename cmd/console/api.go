package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/linguaquest/dialogue-engine/internal/session"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	ID       uuid.UUID        `json:"id"`
	Session  session.View     `json:"session"`
	Feedback *speech.Feedback `json:"feedback,omitempty"`
}

type treeListResponse struct {
	Trees []string `json:"trees"`
}

func listTrees(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/trees")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var list treeListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse tree list response: %w", err)
	}
	return list.Trees, nil
}

func openSession(client *http.Client, baseURL, treeID, npcID, profileID string) (*sessionResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"tree_id":    treeID,
		"npc_id":     npcID,
		"profile_id": profileID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSessionResponse(resp, http.StatusCreated)
}

func submitInput(client *http.Client, baseURL string, sessionID uuid.UUID, text string) (*sessionResponse, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/input", baseURL, sessionID)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSessionResponse(resp, http.StatusOK)
}

func selectChoice(client *http.Client, baseURL string, sessionID uuid.UUID, responseID string) (*sessionResponse, error) {
	payload, err := json.Marshal(map[string]string{"response_id": responseID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/choice", baseURL, sessionID)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return decodeSessionResponse(resp, http.StatusOK)
}

func closeSession(client *http.Client, baseURL string, sessionID uuid.UUID) error {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	return nil
}

func decodeSessionResponse(resp *http.Response, wantStatus int) (*sessionResponse, error) {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, apiError(resp.StatusCode, body)
	}

	var sr sessionResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &sr, nil
}

func apiError(status int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}
