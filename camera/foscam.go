package camera

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devskill-org/nightvision/utils"
)

// Foscam CGI commands
const (
	cmdSetInfraLedConfig = "setInfraLedConfig"
	cmdOpenInfraLed      = "openInfraLed"
	cmdCloseInfraLed     = "closeInfraLed"
	cmdGetDevState       = "getDevState"

	// infraLedModeManual stops the camera's own light sensor from toggling the LEDs
	infraLedModeManual = "1"
)

// cgiResult is the XML envelope of every CGIProxy.fcgi reply
type cgiResult struct {
	XMLName       xml.Name `xml:"CGI_Result"`
	Result        int      `xml:"result"`
	InfraLedState *int     `xml:"infraLedState"`
}

// FoscamClient drives the infrared LEDs through the Foscam CGI API
type FoscamClient struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

// NewFoscamClient creates a client for the camera at baseURL (e.g. http://192.168.1.20:88)
func NewFoscamClient(baseURL, username, password string) *FoscamClient {
	return &FoscamClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
	}
}

// SetNightVision switches the LEDs to manual mode and turns them on or off
func (c *FoscamClient) SetNightVision(ctx context.Context, on bool) error {
	if _, err := c.do(ctx, cmdSetInfraLedConfig, url.Values{"mode": {infraLedModeManual}}); err != nil {
		return err
	}

	cmd := cmdCloseInfraLed
	if on {
		cmd = cmdOpenInfraLed
	}
	_, err := c.do(ctx, cmd, nil)
	return err
}

// NightVisionState reports whether the infrared LEDs are currently on
func (c *FoscamClient) NightVisionState(ctx context.Context) (bool, error) {
	result, err := c.do(ctx, cmdGetDevState, nil)
	if err != nil {
		return false, err
	}
	if result.InfraLedState == nil {
		return false, fmt.Errorf("%s reply has no infraLedState", cmdGetDevState)
	}
	return *result.InfraLedState == 1, nil
}

// Close is a no-op; the HTTP client holds no per-camera resources
func (c *FoscamClient) Close() error {
	return nil
}

func (c *FoscamClient) do(ctx context.Context, cmd string, params url.Values) (*cgiResult, error) {
	reqURL, err := c.buildURL(cmd, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: cmd, Err: utils.RedactURLError(err, "usr", "pwd")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Operation: cmd, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var result cgiResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s reply: %w", cmd, err)
	}

	if result.Result != 0 {
		return nil, &CommandError{Command: cmd, Result: result.Result}
	}

	return &result, nil
}

func (c *FoscamClient) buildURL(cmd string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/cgi-bin/CGIProxy.fcgi")
	if err != nil {
		return "", err
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("cmd", cmd)
	query.Set("usr", c.username)
	query.Set("pwd", c.password)

	u.RawQuery = query.Encode()
	return u.String(), nil
}

func foscamResultText(result int) string {
	switch result {
	case -1:
		return "request string format error"
	case -2:
		return "username or password error"
	case -3:
		return "access denied"
	case -4:
		return "CGI execute failure"
	case -5:
		return "timeout"
	default:
		return "unknown error"
	}
}
