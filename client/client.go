// Package client submits property forms to the admin console API the way
// the editor does: images are checked against the quota, compressed, and
// sent with the form fields in a single multipart request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	compress imageset.CompressOptions
	logger   logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithCompressOptions(opts imageset.CompressOptions) Option {
	return func(c *Client) { c.compress = opts }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 60 * time.Second},
		compress: imageset.DefaultCompressOptions,
		logger:   utils.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token used on later requests.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return res.User, nil
}

// CreateProperty submits a new property with its images.
func (c *Client) CreateProperty(ctx context.Context, in services.PropertyInput, images []imageset.Upload) (*models.Property, error) {
	if err := imageset.CheckQuota(nil, nil, len(images)); err != nil {
		return nil, err
	}
	return c.submit(ctx, http.MethodPost, "/properties", in, nil, images)
}

// UpdateProperty submits an edit. existing is the property's current image
// list; removed names the URLs dropped in the editor. The quota is checked
// before anything is compressed or sent.
func (c *Client) UpdateProperty(ctx context.Context, id int64, in services.PropertyInput, existing, removed []string, images []imageset.Upload) (*models.Property, error) {
	if err := imageset.CheckQuota(existing, removed, len(images)); err != nil {
		return nil, err
	}
	return c.submit(ctx, http.MethodPut, "/properties/"+strconv.FormatInt(id, 10), in, removed, images)
}

func (c *Client) submit(ctx context.Context, method, path string, in services.PropertyInput, removed []string, images []imageset.Upload) (*models.Property, error) {
	staged := imageset.Stage(images, c.compress, c.logger)

	body, contentType, err := propertyForm(in, removed, staged)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var p models.Property
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{"propertyID": p.ID, "images": len(p.ImageURLs)}).Debug("Property submitted")
	return &p, nil
}

func propertyForm(in services.PropertyInput, removed []string, images []imageset.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"propertyType", in.PropertyType},
		{"fullName", in.FullName},
		{"phoneNumber", in.PhoneNumber},
		{"propertyName", in.PropertyName},
		{"commercialType", in.CommercialType},
		{"rentalType", in.RentalType},
		{"numOfRooms", formInt(in.NumOfRooms)},
		{"numOfBedRooms", formInt(in.NumOfBedRooms)},
		{"numOfToilets", formInt(in.NumOfToilets)},
		{"numOfVillaRooms", formInt(in.NumOfVillaRooms)},
		{"locationDetails", in.LocationDetails},
		{"description", in.Description},
		{"plotSize", in.PlotSize},
		{"budget", in.Budget},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if len(removed) > 0 {
		data, err := json.Marshal(removed)
		if err != nil {
			return nil, "", err
		}
		if err := mw.WriteField("removedImages", string(data)); err != nil {
			return nil, "", err
		}
	}

	for _, img := range images {
		fw, err := mw.CreateFormFile("files", img.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func formInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body utils.ErrorResponse
		if json.Unmarshal(data, &body) == nil {
			apiErr.Code, apiErr.Message = body.Code, body.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
