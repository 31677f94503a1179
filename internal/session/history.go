// ABOUTME: Bounded, insertion-ordered record of completed exchanges
// ABOUTME: Evicts the oldest exchanges first once the limit is exceeded

package session

// Default limits for the history buffer and the context sent with each request.
const (
	DefaultHistoryLimit  = 10
	DefaultContextWindow = 6
)

// Exchange is one user message paired with the reply it produced.
type Exchange struct {
	UserText string
	BotText  string
}

// History keeps the most recent exchanges, oldest first.
// It is not safe for concurrent use; Session serializes access to it.
type History struct {
	limit     int
	exchanges []Exchange
}

// NewHistory creates an empty history holding at most limit exchanges.
// A non-positive limit selects DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:     limit,
		exchanges: make([]Exchange, 0, limit+1),
	}
}

// Append adds ex as the newest exchange and drops exchanges from the front
// until the history is back within its limit.
func (h *History) Append(ex Exchange) {
	h.exchanges = append(h.exchanges, ex)
	if over := len(h.exchanges) - h.limit; over > 0 {
		n := copy(h.exchanges, h.exchanges[over:])
		h.exchanges = h.exchanges[:n]
	}
}

// Last returns a copy of the newest n exchanges in chronological order.
// Fewer are returned when the history is shorter than n.
func (h *History) Last(n int) []Exchange {
	if n <= 0 {
		return []Exchange{}
	}
	if n > len(h.exchanges) {
		n = len(h.exchanges)
	}
	out := make([]Exchange, n)
	copy(out, h.exchanges[len(h.exchanges)-n:])
	return out
}

// All returns a copy of every stored exchange, oldest first.
func (h *History) All() []Exchange {
	return h.Last(len(h.exchanges))
}

// Len reports the number of stored exchanges.
func (h *History) Len() int {
	return len(h.exchanges)
}

// Limit reports the maximum number of exchanges kept.
func (h *History) Limit() int {
	return h.limit
}
