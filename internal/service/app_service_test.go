package service

import (
	"context"
	"errors"
	"testing"

	"privacyguard/internal/risk"
)

func newTestAppService(repo *fakeAppRepo, counter *stubCounter) *AppService {
	riskSvc := newTestRiskService(repo, counter)
	return NewAppService(repo, riskSvc, nil)
}

func seedApp(t *testing.T, svc *AppService, counter *stubCounter, name string, perms map[string]bool) {
	t.Helper()
	if _, err := svc.riskSvc.CheckRisk(context.Background(), testUser, &RiskCheckRequest{
		AppName:     name,
		Permissions: perms,
	}); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestListAppsActiveOnly(t *testing.T) {
	repo := newFakeAppRepo()
	counter := &stubCounter{}
	svc := newTestAppService(repo, counter)

	seedApp(t, svc, counter, "One", nil)
	seedApp(t, svc, counter, "Two", nil)

	if err := svc.DeleteApp(context.Background(), testUser, "Two"); err != nil {
		t.Fatalf("DeleteApp: %v", err)
	}

	apps, err := svc.ListApps(context.Background(), testUser)
	if err != nil {
		t.Fatalf("ListApps: %v", err)
	}
	if len(apps) != 1 || apps[0].AppName != "One" {
		t.Fatalf("got %d apps, want only the active one", len(apps))
	}
}

func TestGetAppNotFoundAfterDelete(t *testing.T) {
	repo := newFakeAppRepo()
	counter := &stubCounter{}
	svc := newTestAppService(repo, counter)

	seedApp(t, svc, counter, "Gone", nil)
	if err := svc.DeleteApp(context.Background(), testUser, "Gone"); err != nil {
		t.Fatalf("DeleteApp: %v", err)
	}

	if _, err := svc.GetApp(context.Background(), testUser, "Gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAppRescores(t *testing.T) {
	repo := newFakeAppRepo()
	counter := &stubCounter{domainCounts: map[string]int{"tracker.example": 5}}
	svc := newTestAppService(repo, counter)

	seedApp(t, svc, counter, "Fitness", map[string]bool{risk.FactorLocation: true})

	before, err := svc.GetApp(context.Background(), testUser, "Fitness")
	if err != nil {
		t.Fatalf("GetApp: %v", err)
	}

	url := "https://tracker.example/api"
	perms := map[string]bool{
		risk.FactorLocation:   true,
		risk.FactorHealthData: true,
	}
	updated, err := svc.UpdateApp(context.Background(), testUser, "Fitness", &AppUpdateRequest{
		URL:         &url,
		Permissions: &perms,
	})
	if err != nil {
		t.Fatalf("UpdateApp: %v", err)
	}

	if updated.Domain != "tracker.example" {
		t.Errorf("Domain = %q, want tracker.example", updated.Domain)
	}
	if updated.RiskScore <= before.RiskScore {
		t.Errorf("score after adding permissions and breaches: %d -> %d, want increase",
			before.RiskScore, updated.RiskScore)
	}
	if updated.BreachCount != 5 {
		t.Errorf("BreachCount = %d, want 5", updated.BreachCount)
	}

	stored, err := svc.GetApp(context.Background(), testUser, "Fitness")
	if err != nil {
		t.Fatalf("GetApp after update: %v", err)
	}
	if stored.RiskScore != updated.RiskScore {
		t.Errorf("stored score %d != returned score %d", stored.RiskScore, updated.RiskScore)
	}
}

func TestUpdateAppUnknown(t *testing.T) {
	svc := newTestAppService(newFakeAppRepo(), &stubCounter{})

	url := "https://x.example"
	_, err := svc.UpdateApp(context.Background(), testUser, "Nope", &AppUpdateRequest{URL: &url})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchAppsUnavailableWithoutIndex(t *testing.T) {
	svc := newTestAppService(newFakeAppRepo(), &stubCounter{})

	if _, err := svc.SearchApps(context.Background(), testUser, "bank", 10); err == nil {
		t.Fatal("expected an error when the search index is not configured")
	}
}
