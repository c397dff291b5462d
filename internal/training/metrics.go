package training

import (
	"fmt"
	"sort"
	"strings"
)

// Metrics summarizes binary classification quality on a held-out set.
// Precision, recall and F1 refer to the phishing class and are 0 when
// undefined. ROCAUC is 0.5 when only one class is present.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`

	Confusion Confusion `json:"confusion"`
}

// Confusion counts with phishing as the positive class.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// ComputeMetrics scores predictions yPred and phishing probabilities
// yProba against yTrue. yProba may be nil, in which case ROCAUC is not
// computed and stays 0.
func ComputeMetrics(yTrue, yPred []int, yProba []float64) Metrics {
	var c Confusion
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			c.TP++
		case yTrue[i] == 0 && yPred[i] == 1:
			c.FP++
		case yTrue[i] == 0 && yPred[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}

	m := Metrics{Confusion: c}
	if n := len(yTrue); n > 0 {
		m.Accuracy = float64(c.TP+c.TN) / float64(n)
	}
	m.Precision = ratio(c.TP, c.TP+c.FP)
	m.Recall = ratio(c.TP, c.TP+c.FN)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if yProba != nil {
		m.ROCAUC = rocAUC(yTrue, yProba)
	}
	return m
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// rocAUC is the Mann-Whitney U statistic normalized to [0,1], with tied
// scores contributing half.
func rocAUC(yTrue []int, scores []float64) float64 {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	// Average ranks over ties.
	ranks := make([]float64, len(scores))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	rankSum := 0.0
	for i, y := range yTrue {
		if y == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg)
}

// Report renders per-class precision/recall/F1 with supports, in the usual
// classification-report layout.
func (m Metrics) Report() string {
	c := m.Confusion
	legitP := ratio(c.TN, c.TN+c.FN)
	legitR := ratio(c.TN, c.TN+c.FP)
	legitF := 0.0
	if legitP+legitR > 0 {
		legitF = 2 * legitP * legitR / (legitP + legitR)
	}
	total := c.TP + c.FP + c.TN + c.FN

	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "legit", legitP, legitR, legitF, c.TN+c.FP)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "phishing", m.Precision, m.Recall, m.F1, c.TP+c.FN)
	fmt.Fprintf(&b, "\n%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", m.Accuracy, total)
	fmt.Fprintf(&b, "%12s %10.4f\n", "roc_auc", m.ROCAUC)
	return b.String()
}
