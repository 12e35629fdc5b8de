package accesslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// Open creates dir if needed and opens access.log for appending. The log
// location must exist before the server takes traffic.
func Open(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "access.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open access log: %w", err)
	}
	return f, nil
}

// Middleware writes one Apache combined-format line per request to w.
func Middleware(w io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    w,
		Formatter: combined,
	})
}

func combined(p gin.LogFormatterParams) string {
	referer := p.Request.Referer()
	if referer == "" {
		referer = "-"
	}
	ua := p.Request.UserAgent()
	if ua == "" {
		ua = "-"
	}
	size := "-"
	if p.BodySize >= 0 {
		size = strconv.Itoa(p.BodySize)
	}
	return fmt.Sprintf("%s - - [%s] %q %d %s %q %q\n",
		p.ClientIP,
		p.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
		fmt.Sprintf("%s %s %s", p.Method, p.Path, p.Request.Proto),
		p.StatusCode,
		size,
		referer,
		ua,
	)
}

// RequestID propagates or assigns an X-Request-ID so access-log entries
// can be correlated with client reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}
