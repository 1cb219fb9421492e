package cbr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/loan-analytics/internal/config"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// ErrNoKeyRate is returned when the response holds no usable rate
var ErrNoKeyRate = errors.New("no key rate in response")

// lookback is the window queried; the rate changes at most a few times a month
const lookback = 30 * 24 * time.Hour

const keyRateEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
	<soap12:Body>
		<KeyRate xmlns="http://web.cbr.ru/">
			<fromDate>%s</fromDate>
			<ToDate>%s</ToDate>
		</KeyRate>
	</soap12:Body>
</soap12:Envelope>`

// CBRClient fetches the Central Bank of Russia key rate used as the reference
// rate for interest spreads
type CBRClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
	now    func() time.Time
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url:    cfg.CBRURL,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
		now:    time.Now,
	}
}

// GetKeyRate retrieves the most recent published key rate in percent
func (c *CBRClient) GetKeyRate(ctx context.Context) (float64, error) {
	to := c.now()
	body, err := c.call(ctx, fmt.Sprintf(keyRateEnvelope, to.Add(-lookback).Format("2006-01-02"), to.Format("2006-01-02")))
	if err != nil {
		return 0, err
	}

	rate, published, err := latestRate(body)
	if err != nil {
		return 0, err
	}
	c.log.WithField("published", published.Format("2006-01-02")).Infof("Retrieved key rate: %.2f%%", rate)
	return rate, nil
}

func (c *CBRClient) call(ctx context.Context, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to build key rate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("key rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key rate request failed: unexpected status code %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read key rate response: %w", err)
	}
	c.log.WithField("bytes", len(body)).Debug("Key rate response received")
	return body, nil
}

// latestRate picks the KR row with the newest DT. Rows whose date does not
// parse are ranked by document order, which the service returns newest first.
func latestRate(body []byte) (float64, time.Time, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to parse key rate XML: %w", err)
	}

	rows := doc.FindElements("//diffgram/KeyRate/KR")
	if len(rows) == 0 {
		return 0, time.Time{}, ErrNoKeyRate
	}

	var (
		best     float64
		bestDate time.Time
		found    bool
	)
	for _, row := range rows {
		rateEl := row.FindElement("./Rate")
		if rateEl == nil {
			continue
		}
		rate, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(rateEl.Text()), ",", ".", 1), 64)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("invalid key rate %q: %w", rateEl.Text(), err)
		}
		var published time.Time
		if dt := row.FindElement("./DT"); dt != nil {
			published, _ = time.Parse(time.RFC3339, strings.TrimSpace(dt.Text()))
		}
		if !found || published.After(bestDate) {
			best, bestDate, found = rate, published, true
		}
	}
	if !found {
		return 0, time.Time{}, ErrNoKeyRate
	}
	return best, bestDate, nil
}
