package line

import (
	"fmt"
	"sync"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/mediation"
)

// Initializer initializes the process wide FiveAd SDK at most once.
type Initializer struct {
	sdk     fivead.SDK
	factory SdkFactory
	mu      sync.Mutex
}

func NewInitializer(sdk fivead.SDK, factory SdkFactory) *Initializer {
	return &Initializer{
		sdk:     sdk,
		factory: factory,
	}
}

// Initialize initializes the SDK for appID unless it already is. Settings of later calls
// do not change an initialized SDK.
func (i *Initializer) Initialize(appID string, isTest bool, childDirected mediation.Tag) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sdk.IsInitialized() {
		return nil
	}

	config := i.factory.CreateFiveAdConfig(appID)
	config.IsTest = isTest
	config.NeedChildDirectedTreatment = childDirectedTreatment(childDirected)
	if err := i.sdk.Initialize(config); err != nil {
		return &errortypes.FailedToInitialize{
			Message: fmt.Sprintf("FiveAd SDK initialization for application %s failed: %v", appID, err),
		}
	}
	logger.Infof("FiveAd SDK %s initialized for application %s (test=%t)", i.sdk.Version(), appID, isTest)
	return nil
}

func childDirectedTreatment(tag mediation.Tag) fivead.NeedChildDirectedTreatment {
	switch tag {
	case mediation.TagTrue:
		return fivead.NeedChildDirectedTreatmentTrue
	case mediation.TagFalse:
		return fivead.NeedChildDirectedTreatmentFalse
	default:
		return fivead.NeedChildDirectedTreatmentUnspecified
	}
}
