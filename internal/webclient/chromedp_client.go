package webclient

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/phishscan/internal/logging"
)

// ChromedpClient renders pages in headless Chrome and returns the resulting
// DOM. Only GET is supported. The browser process is started lazily by the
// first request and shared by all tabs.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	idleAfter   time.Duration
	logger      logging.Logger
}

func NewChromedpClient(cfg Config, logger logging.Logger) (WebClient, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	l := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	l.Debug("created chromedp webclient", logging.Field{Key: "idle_after", Value: cfg.idleAfter().String()})

	return &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     cfg.timeout(),
		idleAfter:   cfg.idleAfter(),
		logger:      l,
	}, nil
}

// waitNetworkIdle signals once no network request has been in flight for
// idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{}, 1)
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					idleChan <- struct{}{}
				})
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("chromedp: method %s not supported", m)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var (
		mu      sync.Mutex
		status  int64
		headers = http.Header{}
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if status != 0 {
			return
		}
		status = e.Response.Status
		for k, v := range e.Response.Headers {
			headers.Add(k, fmt.Sprint(v))
		}
	})
	idle := waitNetworkIdle(tabCtx, c.idleAfter)

	c.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("chromedp wait: %w", tabCtx.Err())
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("chromedp outer html: %w", err)
	}

	mu.Lock()
	code := int(status)
	headers.Set("Content-Type", utf8ContentType(headers.Get("Content-Type")))
	mu.Unlock()
	if code == 0 {
		code = http.StatusOK
	}

	return &Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(html),
		StatusCode: code,
		FetchedAt:  time.Now(),
	}, nil
}

// utf8ContentType rewrites a document Content-Type to declare UTF-8. The
// serialized DOM is always UTF-8 whatever charset the server declared.
func utf8ContentType(contentType string) string {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" {
		mt, params = "text/html", map[string]string{}
	}
	params["charset"] = "utf-8"
	return mime.FormatMediaType(mt, params)
}

func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Close shuts the browser down.
func (c *ChromedpClient) Close() error {
	c.allocCancel()
	return nil
}
