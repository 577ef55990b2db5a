package survey

import (
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// stepClock advances one second per reading.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func testFactory() (Factory, *stepClock) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	return Factory{
		Now: clock.Now,
		NewID: func() string {
			n++
			return "id-" + strconv.Itoa(n)
		},
	}, clock
}

func newTestStore() *Store {
	f, _ := testFactory()
	return NewStore(zerolog.New(io.Discard), StoreOptions{Factory: f})
}

// apply runs cmds through Reduce starting from doc.
func apply(f Factory, doc Document, cmds ...Command) Document {
	for _, c := range cmds {
		doc, _ = f.Reduce(doc, c)
	}
	return doc
}

func strPtr(s string) *string { return &s }
