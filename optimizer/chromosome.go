package optimizer

import "math/rand"

// Chromosome is an inclusion vector over the catalogue: gene i set means
// item i is part of the selection. Any change to the genes marks the cached
// fitness stale; the population is re-evaluated before it is ranked.
type Chromosome struct {
	genes   []bool
	fitness float64
	stale   bool
}

// newRandomChromosome draws each gene with probability 0.5.
func newRandomChromosome(n int, rng *rand.Rand) *Chromosome {
	genes := make([]bool, n)
	for i := range genes {
		genes[i] = rng.Intn(2) == 1
	}
	return &Chromosome{genes: genes, stale: true}
}

// newChromosome wraps genes (taking ownership).
func newChromosome(genes []bool) *Chromosome {
	return &Chromosome{genes: genes, stale: true}
}

// Genes returns a copy of the inclusion vector.
func (c *Chromosome) Genes() []bool {
	out := make([]bool, len(c.genes))
	copy(out, c.genes)
	return out
}

// Len returns the number of genes.
func (c *Chromosome) Len() int {
	return len(c.genes)
}

// Count returns the number of included items.
func (c *Chromosome) Count() int {
	n := 0
	for _, g := range c.genes {
		if g {
			n++
		}
	}
	return n
}

// Set changes gene i and invalidates the fitness if it differs.
func (c *Chromosome) Set(i int, v bool) {
	if c.genes[i] != v {
		c.genes[i] = v
		c.stale = true
	}
}

// Flip inverts gene i.
func (c *Chromosome) Flip(i int) {
	c.genes[i] = !c.genes[i]
	c.stale = true
}

// Fitness returns the last evaluated fitness. It is only meaningful when
// Stale reports false.
func (c *Chromosome) Fitness() float64 {
	return c.fitness
}

// Stale reports whether the genes changed since the last evaluation.
func (c *Chromosome) Stale() bool {
	return c.stale
}

// Clone returns an independent copy, including the evaluated fitness.
func (c *Chromosome) Clone() *Chromosome {
	return &Chromosome{
		genes:   c.Genes(),
		fitness: c.fitness,
		stale:   c.stale,
	}
}

// evaluate recomputes fitness if the genes changed.
func (c *Chromosome) evaluate(ev *evaluator) {
	if !c.stale {
		return
	}
	c.fitness = ev.fitness(c.genes)
	c.stale = false
}
