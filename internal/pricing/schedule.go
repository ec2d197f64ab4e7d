package pricing

import (
	"math"
	"sync"
)

// InterestStep is one month of the capital cost schedule.
type InterestStep struct {
	Month              int
	OutstandingBalance float64
	MonthlyInterest    float64
	CumulativeInterest float64
}

// InterestSchedule simulates financing the purchase over totalMonths equal
// installments, accruing interest on the outstanding balance at the monthly
// equivalent of the annual Selic rate.
func InterestSchedule(purchasePrice, selicRate float64, totalMonths int) ([]InterestStep, error) {
	if purchasePrice <= 0 {
		return nil, invalidf("purchase price must be greater than 0")
	}
	if totalMonths < 1 {
		return nil, invalidf("total months must be at least 1")
	}
	if selicRate < 0 {
		return nil, invalidf("selic rate must be greater than or equal to 0")
	}

	monthlySelic := math.Pow(1+selicRate, 1.0/12.0) - 1
	monthlyPayment := purchasePrice / float64(totalMonths)
	outstanding := purchasePrice
	cumulative := 0.0

	steps := make([]InterestStep, 0, totalMonths)
	for month := 1; month <= totalMonths; month++ {
		monthlyInterest := outstanding * monthlySelic
		cumulative += monthlyInterest

		steps = append(steps, InterestStep{
			Month:              month,
			OutstandingBalance: outstanding,
			MonthlyInterest:    monthlyInterest,
			CumulativeInterest: cumulative,
		})

		outstanding -= monthlyPayment
	}

	return steps, nil
}

type minInterestKey struct {
	purchasePrice float64
	selicRate     float64
	totalMonths   int
}

var (
	minInterestMu   sync.Mutex
	minInterestMemo = make(map[minInterestKey]float64)
)

// MinimumAcceptableInterest returns, as a percentage of the purchase price,
// the interest rate needed to cover the capital cost of financing it.
// Results are memoized; the UI recomputes this on every form render.
func MinimumAcceptableInterest(purchasePrice, selicRate float64, totalMonths int) (float64, error) {
	key := minInterestKey{purchasePrice, selicRate, totalMonths}

	minInterestMu.Lock()
	cached, ok := minInterestMemo[key]
	minInterestMu.Unlock()
	if ok {
		return cached, nil
	}

	steps, err := InterestSchedule(purchasePrice, selicRate, totalMonths)
	if err != nil {
		return 0, err
	}

	rate := steps[len(steps)-1].CumulativeInterest / purchasePrice * 100

	minInterestMu.Lock()
	if len(minInterestMemo) >= 128 {
		minInterestMemo = make(map[minInterestKey]float64)
	}
	minInterestMemo[key] = rate
	minInterestMu.Unlock()

	return rate, nil
}
