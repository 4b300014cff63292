package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ManagerAddr == "" {
		s.T().Skip("MANAGER_ADDR not set, skipping e2e scenarios")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Header prints a colorized section marker so scenario steps stand out in logs.
func (s *BaseHTTPSuite) Header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Do sends a JSON request against the manager and decodes the response body.
func (s *BaseHTTPSuite) Do(method, path string, payload any, into any) *http.Response {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.Config.ManagerAddr+path, body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var buffer bytes.Buffer
	_, err = buffer.ReadFrom(resp.Body)
	s.Require().NoError(err)

	if s.Config.DebugJSON {
		s.T().Logf("HTTP %s %s [%d] in %v\nRESPONSE:\n%s",
			method, path, resp.StatusCode, time.Since(start), buffer.String())
	} else {
		s.T().Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	}

	if into != nil && buffer.Len() > 0 {
		s.Require().NoError(json.Unmarshal(buffer.Bytes(), into))
	}
	return resp
}
