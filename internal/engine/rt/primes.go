package rt

// primeTable lists convenient hash-table capacities, mirroring the
// hard-coded growth table the property store uses for its first several
// growths before falling back to on-the-fly primality testing.
var primeTable = []int{
	7, 17, 37, 79, 163, 331, 673, 1361, 2729, 5471,
	10949, 21911, 43853, 87719, 175447, 350899, 701819, 1403641,
	2807303, 5614657, 11229331, 22458671, 44917381, 89834777,
}

// isPrime reports whether n is prime via trial division by 2, 3 and
// then 6k±1 candidates, the standard trick for skipping all remaining
// multiples of 2 and 3.
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	if n%3 == 0 {
		return n == 3
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// nextPrime returns the smallest prime >= n, first checking the
// hard-coded table and falling back to scanning upward.
func nextPrime(n int) int {
	for _, p := range primeTable {
		if p >= n {
			return p
		}
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

// growPrimeCapacity returns the next table capacity to grow to given a
// current capacity, roughly doubling before rounding up to a prime.
func growPrimeCapacity(current int) int {
	return nextPrime(current*2 + 1)
}
