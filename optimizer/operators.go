package optimizer

import (
	"math/rand"
	"sort"
)

// rankByFitness sorts the population best-first. The sort is stable so
// equal-fitness chromosomes keep their order and runs stay reproducible.
func rankByFitness(pop []*Chromosome) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness > pop[j].fitness
	})
}

// tournament picks size random members and returns the fittest.
func tournament(pop []*Chromosome, size int, rng *rand.Rand) *Chromosome {
	var best *Chromosome
	for i := 0; i < size; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if best == nil || candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return best
}

// crossover performs single-point crossover and returns two children.
// With fewer than two genes the children are plain copies.
func crossover(a, b *Chromosome, rng *rand.Rand) (*Chromosome, *Chromosome) {
	n := a.Len()
	if n < 2 {
		return newChromosome(a.Genes()), newChromosome(b.Genes())
	}

	point := 1 + rng.Intn(n-1)
	g1 := make([]bool, n)
	g2 := make([]bool, n)
	copy(g1[:point], a.genes[:point])
	copy(g1[point:], b.genes[point:])
	copy(g2[:point], b.genes[:point])
	copy(g2[point:], a.genes[point:])
	return newChromosome(g1), newChromosome(g2)
}

// mutate applies bit-flip mutation with probability rate; once applied,
// each gene flips independently with probability flipRate.
// Returns true if the mutation operator ran.
func mutate(c *Chromosome, rate, flipRate float64, rng *rand.Rand) bool {
	if rng.Float64() >= rate {
		return false
	}
	for i := range c.genes {
		if rng.Float64() < flipRate {
			c.Flip(i)
		}
	}
	return true
}
