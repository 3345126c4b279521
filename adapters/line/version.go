package line

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blang/semver"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/mediation"
)

// adapterVersionInfo parses an adapter version of the form
// <sdk major>.<sdk minor>.<sdk patch>.<adapter patch>[.<build>]. Parts past the build are ignored.
func adapterVersionInfo(version string) mediation.VersionInfo {
	parts := strings.Split(version, ".")
	if len(parts) >= 4 {
		if info, ok := packVersion(parts, 5); ok {
			return info
		}
	}
	return malformedVersion("adapter", version)
}

// sdkVersionInfo parses the FiveAd SDK version, a semantic version optionally followed by
// a build component. Parts past the build are ignored.
func sdkVersionInfo(version string) mediation.VersionInfo {
	parts := strings.Split(version, ".")
	if len(parts) >= 3 {
		if info, ok := packVersion(parts, 4); ok {
			return info
		}
	}
	return malformedVersion("SDK", version)
}

// packVersion reads major.minor.patch from the first three parts and folds the parts after
// them, up to maxParts in total, into Micro, two decimal digits each: 1.2.3.4 becomes 1.2.304.
func packVersion(parts []string, maxParts int) (mediation.VersionInfo, bool) {
	if len(parts) > maxParts {
		parts = parts[:maxParts]
	}
	v, err := semver.ParseTolerant(strings.Join(parts[:3], "."))
	if err != nil {
		return mediation.VersionInfo{}, false
	}
	micro := int(v.Patch)
	for _, part := range parts[3:] {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return mediation.VersionInfo{}, false
		}
		micro = micro*100 + n
	}
	return mediation.VersionInfo{Major: int(v.Major), Minor: int(v.Minor), Micro: micro}, true
}

func malformedVersion(kind, version string) mediation.VersionInfo {
	logWarning(&errortypes.Warning{
		Message:     fmt.Sprintf("Unexpected %s version format: %s. Returning 0.0.0 for %s version.", kind, version, kind),
		WarningCode: errortypes.MalformedVersionWarningCode,
	})
	return mediation.VersionInfo{}
}

func logWarning(warning *errortypes.Warning) {
	logger.Warnf("LINE adapter warning %d: %s", warning.Code(), warning.Message)
}
