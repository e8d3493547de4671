package ops

import (
	"errors"
	"testing"
)

func TestDetectOutliersIQR(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, 2, 3, 4, 5, 100))
	mask, err := DetectOutliers(ds, "v", OutlierIQR, OutlierOptions{})
	if err != nil {
		t.Fatalf("DetectOutliers: %v", err)
	}
	for i, flagged := range mask {
		want := i == 5
		if flagged != want {
			t.Fatalf("mask[%d] = %v, want %v", i, flagged, want)
		}
	}
}

func TestDetectOutliersZScoreConstantColumn(t *testing.T) {
	ds := mustDataset(t, numCol("v", 5, 5, 5, 5))
	mask, err := DetectOutliers(ds, "v", OutlierZScore, OutlierOptions{})
	if err != nil {
		t.Fatalf("DetectOutliers: %v", err)
	}
	for i, flagged := range mask {
		if flagged {
			t.Fatalf("mask[%d] flagged on a zero-variance column", i)
		}
	}
}

func TestDetectOutliersMissingNeverFlagged(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, nan, 2, 3, 4, 5, 100))
	mask, err := DetectOutliers(ds, "v", OutlierIQR, OutlierOptions{})
	if err != nil {
		t.Fatalf("DetectOutliers: %v", err)
	}
	if mask[1] {
		t.Fatal("missing cell was flagged as an outlier")
	}
}

func TestDetectOutliersUnknownMethod(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, 2))
	if _, err := DetectOutliers(ds, "v", "grubbs", OutlierOptions{}); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestDetectOutliersRejectsTextColumn(t *testing.T) {
	ds := mustDataset(t, textCol("c", "a", "b"))
	if _, err := DetectOutliers(ds, "c", OutlierIQR, OutlierOptions{}); err == nil {
		t.Fatal("expected an error for a non-numeric column")
	}
}

func TestFilterOutliers(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, 2, 3))
	out, removed, err := FilterOutliers(ds, []bool{false, true, false})
	if err != nil {
		t.Fatalf("FilterOutliers: %v", err)
	}
	if removed != 1 || out.Rows() != 2 {
		t.Fatalf("removed = %d rows = %d, want 1 and 2", removed, out.Rows())
	}
	if _, _, err := FilterOutliers(ds, []bool{true}); err == nil {
		t.Fatal("expected an error for a mask length mismatch")
	}
}

func TestWinsorizeCapsExtremes(t *testing.T) {
	vals := make([]float64, 101)
	for i := range vals {
		vals[i] = float64(i)
	}
	vals[100] = 10000
	ds := mustDataset(t, numCol("v", vals...))
	out, capped, err := Winsorize(ds, "v")
	if err != nil {
		t.Fatalf("Winsorize: %v", err)
	}
	if capped == 0 {
		t.Fatal("no values were capped")
	}
	got := colFloats(t, out, "v")
	if got[100] == 10000 {
		t.Fatalf("extreme value survived: %v", got[100])
	}
}

func TestIsolationForestDeterministic(t *testing.T) {
	vals := []float64{1, 2, 1.5, 2.5, 1.8, 2.2, 1.1, 2.4, 1.9, 50}
	ds := mustDataset(t, numCol("v", vals...))
	first, err := DetectOutliers(ds, "v", OutlierForest, OutlierOptions{Contamination: 0.1})
	if err != nil {
		t.Fatalf("DetectOutliers: %v", err)
	}
	second, err := DetectOutliers(ds, "v", OutlierForest, OutlierOptions{Contamination: 0.1})
	if err != nil {
		t.Fatalf("second DetectOutliers: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run disagreement at row %d", i)
		}
	}
	if !first[9] {
		t.Fatal("the far point was not flagged")
	}
}

func TestIsolationForestConstantData(t *testing.T) {
	ds := mustDataset(t, numCol("v", 3, 3, 3, 3, 3, 3))
	mask, err := DetectOutliers(ds, "v", OutlierForest, OutlierOptions{})
	if err != nil {
		t.Fatalf("DetectOutliers: %v", err)
	}
	for i, flagged := range mask {
		if flagged {
			t.Fatalf("mask[%d] flagged on constant data", i)
		}
	}
}

func TestDetectAnomaliesAppendsColumns(t *testing.T) {
	ds := mustDataset(t,
		numCol("x", 1, 2, 1.5, 2.5, 1.2, 2.2, 1.8, 100),
		numCol("y", 1, 2, 1.5, 2.5, 1.2, 2.2, 1.8, 100),
		textCol("label", "a", "b", "c", "d", "e", "f", "g", "h"),
	)
	out, info, err := DetectAnomalies(ds, 0.15, nil)
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if !out.HasColumn("anomaly_label") || !out.HasColumn("anomaly_score") {
		t.Fatalf("result columns = %v, want anomaly_label and anomaly_score", out.ColumnNames())
	}
	if info.TotalAnomalies == 0 {
		t.Fatal("no anomalies reported")
	}
	if len(info.AnalyzedColumns) != 2 {
		t.Fatalf("analyzed = %v, want the two numeric columns", info.AnalyzedColumns)
	}
	labels := colFloats(t, out, "anomaly_label")
	if labels[7] != -1 {
		t.Fatalf("anomaly_label[7] = %v, want -1", labels[7])
	}
}

func TestDetectAnomaliesContaminationBounds(t *testing.T) {
	ds := mustDataset(t, numCol("x", 1, 2, 3))
	if _, _, err := DetectAnomalies(ds, 0.9, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}
