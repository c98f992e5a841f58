package usecases

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

const (
	StatusOK          = "ok"
	StatusUnreachable = "unreachable"
	StatusFailed      = "failed"

	// defaultRegion is the key of a whole-set archive ("matrix" / "ids").
	defaultRegion = ""
)

var (
	ErrRegionNotFound   = errors.New("region not found")
	ErrLocationNotFound = errors.New("location id not found")
)

type regionMatrix struct {
	matrix *da.DurationMatrix
	index  map[string]int
	hasIDs bool
}

type MatrixInfo struct {
	Region string
	Rows   int
	Cols   int
	HasIDs bool
}

type TravelTime struct {
	Region  string
	From    string
	To      string
	Minutes float64
	Status  string
}

// MatrixService answers travel time lookups from the matrices of one archive.
type MatrixService struct {
	log                *zap.Logger
	regions            map[string]*regionMatrix
	unreachableMinutes float64
	failureMinutes     float64
}

// NewMatrixService indexes every "<region>_matrix" (or plain "matrix") array
// of ar together with its ids array. Matrices stored without ids are
// addressed by row position.
func NewMatrixService(log *zap.Logger, ar MatrixArchive, unreachableMinutes, failureMinutes float64) (*MatrixService, error) {
	ms := &MatrixService{
		log:                log,
		regions:            make(map[string]*regionMatrix),
		unreachableMinutes: unreachableMinutes,
		failureMinutes:     failureMinutes,
	}

	for _, name := range ar.Names() {
		region, ok := regionOf(name)
		if !ok {
			continue
		}
		arr, _ := ar.Get(name)
		m, err := arr.Matrix()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "array %s is not a duration matrix", name)
		}

		ids, hasIDs, err := ms.readIDs(ar, region, m.Rows())
		if err != nil {
			return nil, err
		}
		rm := &regionMatrix{matrix: m, hasIDs: hasIDs, index: make(map[string]int, len(ids))}
		for i, id := range ids {
			rm.index[id] = i
		}
		ms.regions[region] = rm
	}

	if len(ms.regions) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "archive holds no duration matrix")
	}
	log.Info("matrix archive loaded", zap.Int("matrices", len(ms.regions)))
	return ms, nil
}

func regionOf(name string) (string, bool) {
	if name == "matrix" {
		return defaultRegion, true
	}
	if region, ok := strings.CutSuffix(name, "_matrix"); ok && region != "" {
		return region, true
	}
	return "", false
}

func idsKey(region string) string {
	if region == defaultRegion {
		return "ids"
	}
	return region + "_ids"
}

func (ms *MatrixService) readIDs(ar MatrixArchive, region string, rows int) ([]string, bool, error) {
	arr, ok := ar.Get(idsKey(region))
	if !ok {
		ids := make([]string, rows)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		return ids, false, nil
	}

	ids, err := arr.Strings()
	if err != nil {
		return nil, false, util.WrapErrorf(err, util.ErrBadParamInput, "array %s is not a string array", idsKey(region))
	}
	if len(ids) != rows {
		return nil, false, util.WrapErrorf(nil, util.ErrBadParamInput, "array %s has %d ids for %d rows", idsKey(region), len(ids), rows)
	}
	return ids, true, nil
}

// Matrices lists the loaded matrices sorted by region.
func (ms *MatrixService) Matrices() []MatrixInfo {
	infos := make([]MatrixInfo, 0, len(ms.regions))
	for region, rm := range ms.regions {
		infos = append(infos, MatrixInfo{
			Region: region,
			Rows:   rm.matrix.Rows(),
			Cols:   rm.matrix.Cols(),
			HasIDs: rm.hasIDs,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Region < infos[j].Region
	})
	return infos
}

// TravelTime looks up the minutes from one location id to another. An empty
// region selects the whole-set matrix, or the only matrix of the archive.
func (ms *MatrixService) TravelTime(region, from, to string) (TravelTime, error) {
	rm, region, err := ms.lookupRegion(region)
	if err != nil {
		return TravelTime{}, err
	}

	i, ok := rm.index[from]
	if !ok {
		return TravelTime{}, util.WrapErrorf(ErrLocationNotFound, util.ErrNotFound, "location %q not found in region %q", from, region)
	}
	j, ok := rm.index[to]
	if !ok {
		return TravelTime{}, util.WrapErrorf(ErrLocationNotFound, util.ErrNotFound, "location %q not found in region %q", to, region)
	}

	minutes := float64(rm.matrix.At(i, j))
	return TravelTime{
		Region:  region,
		From:    from,
		To:      to,
		Minutes: minutes,
		Status:  ms.status(minutes),
	}, nil
}

func (ms *MatrixService) lookupRegion(region string) (*regionMatrix, string, error) {
	if rm, ok := ms.regions[region]; ok {
		return rm, region, nil
	}
	if region == defaultRegion {
		if len(ms.regions) == 1 {
			for name, rm := range ms.regions {
				return rm, name, nil
			}
		}
		return nil, "", util.WrapErrorf(nil, util.ErrBadParamInput, "region is required, the archive holds %d matrices", len(ms.regions))
	}
	return nil, "", util.WrapErrorf(ErrRegionNotFound, util.ErrNotFound, "region %q not found", region)
}

// status compares in float32, the precision the matrices are stored in.
func (ms *MatrixService) status(minutes float64) string {
	switch {
	case float32(minutes) >= float32(ms.failureMinutes):
		return StatusFailed
	case float32(minutes) >= float32(ms.unreachableMinutes):
		return StatusUnreachable
	default:
		return StatusOK
	}
}
