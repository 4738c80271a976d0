package transalliance

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// section is the block the cursor is inside. Exactly one is active.
type section int

const (
	sectionIdle section = iota
	sectionCustomer
	sectionLoading
	sectionDelivery
)

func (s section) String() string {
	switch s {
	case sectionCustomer:
		return "customer"
	case sectionLoading:
		return "loading"
	case sectionDelivery:
		return "delivery"
	}
	return "idle"
}

func (s section) role() Role {
	switch s {
	case sectionLoading:
		return RoleLoading
	case sectionDelivery:
		return RoleDelivery
	}
	return RoleCustomer
}

// tracker is the state of one scan. It is created per document and never
// shared.
type tracker struct {
	e     *Engine
	lines []string
	order *entity.Order

	state  section
	buffer []string
	// awaitingCompany is set until the first data line of a section is taken
	// as the party's company name.
	awaitingCompany bool
	// customerRank is one past the index of the marker that opened the
	// customer section, zero until one has.
	customerRank int
	// consumed holds the indexes of window lines already read by the extractor.
	consumed map[int]bool
	// last is the party contact metadata attaches to while idle.
	last *entity.Party

	orderDate time.Time
	cargo     *cargoBuilder
}

func newTracker(e *Engine, lines []string) *tracker {
	return &tracker{
		e:        e,
		lines:    lines,
		order:    entity.NewOrder(),
		consumed: map[int]bool{},
		cargo:    newCargoBuilder(),
	}
}

// scan makes the single forward pass and returns the raw order.
func (t *tracker) scan() *entity.Order {
	for i, raw := range t.lines {
		if t.consumed[i] {
			continue
		}
		t.step(i, strings.TrimSpace(raw))
	}
	t.flush()

	t.order.Cargos = t.cargo.finish()
	if t.cargo.price != nil {
		t.order.FreightPrice = t.cargo.price
		t.order.FreightCurrency = t.cargo.curr
	}
	return t.order
}

func (t *tracker) step(i int, line string) {
	if t.order.OrderReference == "" {
		if ref, ok := extractReference(line); ok {
			t.order.OrderReference = ref
		}
	}
	if t.orderDate.IsZero() {
		if d, ok := extractDocumentDate(line); ok {
			t.orderDate = d
		}
	}

	tables := t.e.tables
	rank := matchIndex(tables.customerOpen, line)
	switch {
	case matchAny(tables.loadingOpen, line):
		if t.state != sectionLoading {
			t.open(sectionLoading, i)
		}
		return
	case matchAny(tables.deliveryOpen, line):
		if t.state != sectionDelivery {
			t.open(sectionDelivery, i)
		}
		return
	case rank >= 0 && (t.customerRank == 0 || rank+1 < t.customerRank):
		if t.customerRank > 0 {
			// The block read under a weaker marker was not the customer.
			t.flush()
			t.order.Customer = entity.Party{}
		}
		t.customerRank = rank + 1
		t.open(sectionCustomer, i)
		return
	}

	if t.state != sectionIdle {
		party := t.party(t.state)
		if metadata(party, line) {
			return
		}
		if t.isData(line) {
			t.collect(party, line)
			return
		}
		t.flush()
	}

	if metadata(t.last, line) {
		return
	}
	t.cargo.observe(line)
}

func (t *tracker) isData(line string) bool {
	if t.state == sectionCustomer {
		return t.e.classifier.IsCustomerDataLine(line)
	}
	return t.e.classifier.IsLocationDataLine(line, t.state.role())
}

// open force-closes the active section and starts s at line i. Location
// sections read their time window from the lines starting at i.
func (t *tracker) open(s section, i int) {
	t.flush()
	t.state = s
	t.buffer = nil

	party := t.party(s)
	t.awaitingCompany = party.Company == ""
	t.last = party

	if s == sectionIdle || s == sectionCustomer {
		return
	}
	w, at, ok := t.e.tables.extractWindow(t.lines, i)
	if !ok {
		return
	}
	if at != i {
		t.consumed[at] = true
	}
	loc := t.location(s)
	if loc.Time.IsZero() {
		loc.Time = w
	}
}

// collect takes the company name first, then buffers address lines and
// closes the section as soon as the buffer resolves completely.
func (t *tracker) collect(party *entity.Party, line string) {
	if t.awaitingCompany {
		party.Company = line
		t.awaitingCompany = false
		return
	}
	t.buffer = append(t.buffer, line)
	if len(t.buffer) < 2 {
		return
	}
	addr, complete := t.e.resolvers[t.state.role()].resolve(t.buffer, true)
	if complete {
		mergeAddress(&party.Address, addr)
		t.buffer = nil
		t.state = sectionIdle
	}
}

// flush resolves whatever is buffered and returns to idle.
func (t *tracker) flush() {
	if t.state != sectionIdle && len(t.buffer) > 0 {
		party := t.party(t.state)
		t.e.resolvers[t.state.role()].ResolveInto(&party.Address, t.buffer)
	}
	t.buffer = nil
	t.state = sectionIdle
	t.awaitingCompany = false
}

func (t *tracker) party(s section) *entity.Party {
	if s == sectionCustomer {
		return &t.order.Customer
	}
	return &t.location(s).CompanyAddress
}

// location returns the single location entry for a loading or delivery
// section, creating it on first use.
func (t *tracker) location(s section) *entity.Location {
	list := &t.order.LoadingLocations
	if s == sectionDelivery {
		list = &t.order.DestinationLocations
	}
	if len(*list) == 0 {
		*list = append(*list, entity.Location{})
	}
	return &(*list)[0]
}
