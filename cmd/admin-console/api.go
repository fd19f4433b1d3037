package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type property struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	PricePerNight string `json:"pricePerNight"`
	MaxGuests     int    `json:"maxGuests"`
	IsActive      bool   `json:"isActive"`
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func (c *apiClient) do(method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// login stores the token on success. Non-admin accounts are rejected here so
// the operator finds out before the first write.
func (c *apiClient) login(email, password string) (string, error) {
	var res struct {
		User struct {
			Email     string `json:"email"`
			FirstName string `json:"firstName"`
			Role      string `json:"role"`
		} `json:"user"`
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return "", err
	}
	if res.User.Role != "admin" {
		return "", fmt.Errorf("%s is not an administrator", res.User.Email)
	}
	c.token = res.Token
	return res.User.FirstName, nil
}

func (c *apiClient) listProperties() ([]property, error) {
	var res struct {
		Properties []property `json:"properties"`
	}
	if err := c.do(http.MethodGet, "/api/properties?limit=100", nil, &res); err != nil {
		return nil, err
	}
	return res.Properties, nil
}

func (c *apiClient) deleteProperty(id string) error {
	return c.do(http.MethodDelete, "/api/properties/"+id, nil, nil)
}
