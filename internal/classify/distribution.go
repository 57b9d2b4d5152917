package classify

import (
	"context"
	"sort"
	"sync"

	"vlmbench/internal/itemid"
)

// Distribution summarizes eligible items across a range.
type Distribution struct {
	Sources  map[string][]string `json:"sources"`
	Tally    ConfidenceTally     `json:"confidence"`
	Excluded int                 `json:"excluded"`
	Absent   int                 `json:"absent"`
	Eligible int                 `json:"eligible"`
}

// SourceNames returns the source keys in sorted order.
func (d Distribution) SourceNames() []string {
	names := make([]string, 0, len(d.Sources))
	for name := range d.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// partial is the per-worker accumulator for BuildDistribution.
type partial struct {
	sources  map[string][]string
	tally    ConfidenceTally
	excluded int
	absent   int
	eligible int
}

// BuildDistribution classifies every id in ids using workers goroutines and
// groups eligible ids by source. The first classification error cancels the
// remaining work and is returned.
func BuildDistribution(ctx context.Context, c *Classifier, ids []string, workers int) (Distribution, error) {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	idCh := make(chan string)
	partials := make([]partial, workers)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		partials[w].sources = map[string][]string{}
		wg.Add(1)
		go func(acc *partial) {
			defer wg.Done()
			for id := range idCh {
				decision, err := c.Classify(ctx, id)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				switch decision.Kind {
				case Excluded:
					acc.excluded++
				case Absent:
					acc.absent++
				case Eligible:
					acc.eligible++
					acc.tally.Observe(decision.Label)
					acc.sources[decision.Info.Source] = append(acc.sources[decision.Info.Source], id)
				}
			}
		}(&partials[w])
	}

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case idCh <- id:
		}
	}
	close(idCh)
	wg.Wait()

	if firstErr != nil {
		return Distribution{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Distribution{}, err
	}
	return mergePartials(partials), nil
}

func mergePartials(partials []partial) Distribution {
	dist := Distribution{Sources: map[string][]string{}}
	tallies := make([]ConfidenceTally, 0, len(partials))
	for _, p := range partials {
		tallies = append(tallies, p.tally)
		dist.Excluded += p.excluded
		dist.Absent += p.absent
		dist.Eligible += p.eligible
		for source, ids := range p.sources {
			dist.Sources[source] = append(dist.Sources[source], ids...)
		}
	}
	dist.Tally = Merge(tallies...)
	for source := range dist.Sources {
		itemid.Sort(dist.Sources[source])
	}
	return dist
}
