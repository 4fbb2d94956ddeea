// Package loadopt proposes delivery load groupings over unassigned
// transactions. Suggestions are ephemeral: they are recomputed on every
// request and never persisted.
package loadopt

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle classes in ascending capacity.
const (
	VehicleLight  = "light_vehicle"
	VehicleMedium = "medium_truck"
	VehicleLarge  = "large_truck"
)

// Dispatch priorities.
const (
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Delivery is one unassigned committed transaction, joined to its customer
// master row where one is linked.
type Delivery struct {
	TransactionID int64
	CustomerID    *int64
	CustomerName  string

	// Delivery-side location, possibly blank.
	Province string
	City     string

	// Customer-master fallback location.
	CustomerProvince string
	CustomerCity     string

	SalesAmount  decimal.Decimal
	ReturnAmount decimal.Decimal
	ItemCount    int
	TxnDate      time.Time
}

// CustomerStop is one customer inside a suggested group.
type CustomerStop struct {
	CustomerID   *int64          `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	Value        decimal.Decimal `json:"value"`
	ItemCount    int             `json:"item_count"`
	Transactions []int64         `json:"transaction_ids"`
}

// SuggestedLoadGroup is one province×city grouping with its score and
// routing recommendation.
type SuggestedLoadGroup struct {
	Province   string          `json:"province"`
	City       string          `json:"city"`
	TotalValue decimal.Decimal `json:"total_value"`
	ItemCount  int             `json:"item_count"`
	StopCount  int             `json:"stop_count"`
	Score      float64         `json:"score"`
	Vehicle    string          `json:"vehicle"`
	Priority   string          `json:"priority"`
	OldestTxn  time.Time       `json:"oldest_txn"`
	Stops      []CustomerStop  `json:"stops"`
}

const unknownLocation = "Unknown"

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return unknownLocation
}

// Suggest groups deliveries by province then city, scores every group, sorts
// by descending score and only then applies the caller's cap. Capping before
// scoring would bias the result toward whichever province happened to be
// enumerated first.
func Suggest(deliveries []Delivery, max int, now time.Time) []SuggestedLoadGroup {
	type cityKey struct{ province, city string }
	byCity := make(map[cityKey][]Delivery)
	for _, d := range deliveries {
		k := cityKey{
			province: fallback(d.Province, d.CustomerProvince),
			city:     fallback(d.City, d.CustomerCity),
		}
		byCity[k] = append(byCity[k], d)
	}

	groups := make([]SuggestedLoadGroup, 0, len(byCity))
	for k, ds := range byCity {
		groups = append(groups, buildGroup(k.province, k.city, ds, now))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Score > groups[j].Score
	})
	if max > 0 && len(groups) > max {
		groups = groups[:max]
	}
	return groups
}

func buildGroup(province, city string, ds []Delivery, now time.Time) SuggestedLoadGroup {
	g := SuggestedLoadGroup{
		Province:   province,
		City:       city,
		TotalValue: decimal.Zero,
	}

	type stopKey struct {
		id   int64
		name string
	}
	stops := make(map[stopKey]*CustomerStop)
	order := make([]stopKey, 0, len(ds))
	for _, d := range ds {
		value := d.SalesAmount.Sub(d.ReturnAmount)
		g.TotalValue = g.TotalValue.Add(value)
		g.ItemCount += d.ItemCount
		if g.OldestTxn.IsZero() || d.TxnDate.Before(g.OldestTxn) {
			g.OldestTxn = d.TxnDate
		}

		k := stopKey{name: d.CustomerName}
		if d.CustomerID != nil {
			k.id = *d.CustomerID
		}
		stop, ok := stops[k]
		if !ok {
			stop = &CustomerStop{
				CustomerID:   d.CustomerID,
				CustomerName: d.CustomerName,
				Value:        decimal.Zero,
			}
			stops[k] = stop
			order = append(order, k)
		}
		stop.Value = stop.Value.Add(value)
		stop.ItemCount += d.ItemCount
		stop.Transactions = append(stop.Transactions, d.TransactionID)
	}

	g.StopCount = len(stops)
	g.Stops = make([]CustomerStop, 0, len(order))
	for _, k := range order {
		g.Stops = append(g.Stops, *stops[k])
	}

	g.Score = score(g.TotalValue, g.ItemCount, g.StopCount)
	g.Vehicle = recommendVehicle(g.TotalValue, g.ItemCount)
	g.Priority = classifyPriority(g.TotalValue, g.OldestTxn, now)
	return g
}

func score(totalValue decimal.Decimal, itemCount, stopCount int) float64 {
	if stopCount == 0 {
		return 0
	}
	value, _ := totalValue.Float64()
	valuePerStop := value / float64(stopCount)
	normalizedValue := valuePerStop / 100000
	if normalizedValue > 1.5 {
		normalizedValue = 1.5
	}
	consolidation := (float64(itemCount) / float64(stopCount)) / 3
	if consolidation > 1.2 {
		consolidation = 1.2
	}
	return normalizedValue*100 + stopOptimality(stopCount)*50 + consolidation*30
}

// stopOptimality peaks at 3-4 stops per load; a one-stop trip wastes the
// truck and a long multi-stop route wastes the day.
func stopOptimality(stops int) float64 {
	switch {
	case stops <= 2:
		return 0.6
	case stops <= 4:
		return 1.0
	case stops == 5:
		return 0.95
	case stops == 6:
		return 0.9
	case stops == 7:
		return 0.85
	case stops == 8:
		return 0.8
	default:
		return 0.6
	}
}

var (
	valueLargeTruck  = decimal.NewFromInt(500000)
	valueMediumTruck = decimal.NewFromInt(200000)
	valueUrgent      = decimal.NewFromInt(1000000)
	valueHigh        = decimal.NewFromInt(500000)
)

func recommendVehicle(totalValue decimal.Decimal, itemCount int) string {
	switch {
	case itemCount > 50 || totalValue.GreaterThan(valueLargeTruck):
		return VehicleLarge
	case itemCount > 20 || totalValue.GreaterThan(valueMediumTruck):
		return VehicleMedium
	default:
		return VehicleLight
	}
}

func classifyPriority(totalValue decimal.Decimal, oldest, now time.Time) string {
	age := time.Duration(0)
	if !oldest.IsZero() {
		age = now.Sub(oldest)
	}
	switch {
	case totalValue.GreaterThan(valueUrgent) || age > 7*24*time.Hour:
		return PriorityUrgent
	case totalValue.GreaterThan(valueHigh) || age > 5*24*time.Hour:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}
