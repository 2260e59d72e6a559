package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/kasboek/output"
)

// TimingCollector builds a tree of timers. The first started timer is the
// root; later Start calls nest under the innermost running timer.
type TimingCollector struct {
	mu      sync.Mutex
	root    *timerNode
	current *timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *timerNode
	children []*timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		c.attach(c.current, node)
	}
	c.current = node
	return &timingTimer{collector: c, node: node}
}

func (c *TimingCollector) attach(parent, node *timerNode) {
	if parent == nil {
		parent = c.root
	}
	node.parent = parent
	parent.children = append(parent.children, node)
}

// Durations returns the duration of every ended timer by name. Repeated
// names add up.
func (c *TimingCollector) Durations() map[string]time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]time.Duration)
	var walk func(*timerNode)
	walk = func(n *timerNode) {
		result[n.name] += n.duration()
		for _, child := range n.children {
			walk(child)
		}
	}
	if c.root != nil {
		walk(c.root)
	}
	return result
}

func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	formatTimingTree(w, c.root, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()
	if t.collector.current == t.node && t.node.parent != nil {
		t.collector.current = t.node.parent
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	t.collector.attach(t.node, node)
	return &timingTimer{collector: t.collector, node: node}
}
