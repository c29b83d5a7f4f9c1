// mkjournal synthesizes a deterministic sample journal: a random-walk
// top of book with trade prints, suitable as backtest input.
package main

import (
	"flag"
	"log"
	"math/rand"

	"main/internal/obs"
	"main/internal/recorder"
	"main/internal/schema"
)

func main() {
	dir := flag.String("dir", "testdata/journal", "Output journal directory")
	prefix := flag.String("prefix", "", "Output file prefix (default: journal)")
	events := flag.Int("events", 10000, "Number of events to generate")
	seed := flag.Int64("seed", 1, "Random walk seed")
	startPrice := flag.Int64("start-price", 10_0000, "Starting midpoint in price ticks")
	sessionOpen := flag.Int64("session-open", 0, "First event timestamp in millis")
	tradeEvery := flag.Int("trade-every", 5, "Emit one trade print every N quote updates")
	flag.Parse()

	if *events <= 0 {
		log.Fatalf("events must be > 0")
	}
	if *startPrice <= 0 {
		log.Fatalf("start-price must be > 0")
	}

	cfg := recorder.DefaultConfig(*dir)
	if *prefix != "" {
		cfg.FilePrefix = *prefix
	}
	writer, err := recorder.NewWriter(cfg)
	if err != nil {
		log.Fatalf("writer init failed: %v", err)
	}

	gen := generator{
		rng:    rand.New(rand.NewSource(*seed)),
		traces: obs.NewTraceGenerator(uint64(*seed)),
		mid:    schema.Price(*startPrice),
		now:    *sessionOpen,
	}
	for i := 0; i < *events; i++ {
		var ev schema.Event
		if *tradeEvery > 0 && i%*tradeEvery == *tradeEvery-1 {
			ev = gen.trade()
		} else {
			ev = gen.quote(i%2 == 0)
		}
		if err := writer.Append(ev); err != nil {
			log.Fatalf("append failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("close failed: %v", err)
	}
	log.Printf("wrote %d events to %s", *events, *dir)
}

const (
	halfSpread = 50
	tickStep   = 100
)

type generator struct {
	rng    *rand.Rand
	traces *obs.TraceGenerator
	mid    schema.Price
	now    int64
	orders uint64
}

func (g *generator) step() {
	g.now += int64(g.rng.Intn(200)) + 1
	g.mid += schema.Price((g.rng.Intn(3) - 1) * tickStep)
	if g.mid < tickStep {
		g.mid = tickStep
	}
}

func (g *generator) header(t schema.EventType) schema.EventHeader {
	h := schema.NewHeader(t, schema.SourceFeed, 0, g.now, g.now)
	h.TraceID = g.traces.Next()
	return h
}

func (g *generator) quote(bid bool) schema.Event {
	g.step()
	g.orders++
	qty := schema.Quantity((g.rng.Intn(9) + 1) * 100)
	price := g.mid - halfSpread
	eventType := schema.EventBid
	if !bid {
		price = g.mid + halfSpread
		eventType = schema.EventAsk
	}
	return schema.Event{
		Header: g.header(eventType),
		Quote: schema.QuoteUpdate{
			OrderID:   g.orders,
			Qty:       qty,
			Price:     price,
			Timestamp: g.now,
		},
	}
}

func (g *generator) trade() schema.Event {
	g.step()
	qty := schema.Quantity((g.rng.Intn(4) + 1) * 100)
	price := g.mid - halfSpread
	if g.rng.Intn(2) == 0 {
		price = g.mid + halfSpread
	} else {
		qty = -qty
	}
	return schema.Event{
		Header: g.header(schema.EventTrade),
		Trade: schema.TradeTick{
			Qty:       qty,
			Price:     price,
			Timestamp: g.now,
		},
	}
}
