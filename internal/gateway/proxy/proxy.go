package proxy

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Processor Proxy
// ============================================================

// Proxy relays gateway requests to one upstream service. A single
// instance shares an http.Client sized for large plan uploads.
type Proxy struct {
	base   string
	client *http.Client
}

func New(baseURL string) *Proxy {
	return &Proxy{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// To returns a handler relaying the route to a fixed upstream path.
func (p *Proxy) To(path string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.forward(c, path)
	}
}

// Relay forwards a single request to a dynamic upstream path.
func (p *Proxy) Relay(c fiber.Ctx, path string) error {
	return p.forward(c, path)
}

// forward relays any method, multipart bodies are rebuilt. The
// caller's query string rides along untouched.
func (p *Proxy) forward(c fiber.Ctx, path string) error {
	target := p.base + path
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		target += "?" + string(qs)
	}
	log.Printf("[PROXY] %s %s -> %s", c.Method(), c.Path(), target)

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		return p.sendMultipart(c, target)
	}
	return p.sendRaw(c, target)
}

func (p *Proxy) sendRaw(c fiber.Ctx, target string) error {
	req, err := http.NewRequest(c.Method(), target, bytes.NewReader(c.Body()))
	if err != nil {
		log.Printf("[PROXY] build request error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "proxy failed"})
	}
	if ct := c.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[PROXY] Upstream error: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to reach processor service"})
	}
	defer resp.Body.Close()

	return writeResponse(c, resp)
}

func (p *Proxy) sendMultipart(c fiber.Ctx, target string) error {
	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("[PROXY] Failed to parse multipart: %v", err)
		return c.Status(400).JSON(fiber.Map{"error": "invalid multipart data"})
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, files := range form.File {
		for _, fileHeader := range files {
			file, err := fileHeader.Open()
			if err != nil {
				log.Printf("[PROXY] Failed to open file: %v", err)
				continue
			}

			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, key, fileHeader.Filename))
			h.Set("Content-Type", fileHeader.Header.Get("Content-Type"))

			part, err := writer.CreatePart(h)
			if err != nil {
				file.Close()
				log.Printf("[PROXY] Failed to create part: %v", err)
				continue
			}

			io.Copy(part, file)
			file.Close()
		}
	}

	for key, values := range form.Value {
		for _, value := range values {
			writer.WriteField(key, value)
		}
	}

	writer.Close()

	req, err := http.NewRequest(c.Method(), target, bytes.NewReader(body.Bytes()))
	if err != nil {
		log.Printf("[PROXY] build multipart request error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "proxy failed"})
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[PROXY] Upstream error: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to reach processor service"})
	}
	defer resp.Body.Close()

	return writeResponse(c, resp)
}

func writeResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[PROXY] Read response error: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
