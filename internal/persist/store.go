package persist

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// DefaultDBName is the conventional sqlite file caplint writes its fact
// cache to, in the project root next to .caplint.kdl.
const DefaultDBName = "aic.db"

// DB wraps a GORM handle opened against caplint's sqlite fact cache.
type DB struct {
	gorm *gorm.DB
}

// Open opens (creating if absent) the sqlite database at path and brings
// its schema up to date via AutoMigrate. Migrations here are additive
// only, per §6: existing columns are never dropped or renamed, so an
// older caplint binary can still read a newer database's tables it
// knows about.
func Open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(
		&FileRecord{},
		&SymbolRecord{},
		&IncludeRecord{},
		&ReferenceRecord{},
		&VisibilityEdgeRecord{},
		&IssueRecord{},
	); err != nil {
		return nil, err
	}
	return &DB{gorm: gdb}, nil
}

// SyncFile replaces every fact row caplint currently holds for one file
// with the contents of st, inside a single transaction so readers never
// observe a half-written file's facts.
func (d *DB) SyncFile(path types.FileID, hash string, st *store.Store) error {
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		var file FileRecord
		err := tx.Where("path = ?", string(path)).First(&file).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			file = FileRecord{Path: string(path), Hash: hash}
			if err := tx.Create(&file).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			file.Hash = hash
			if err := tx.Save(&file).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("file_id = ?", file.ID).Delete(&SymbolRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", file.ID).Delete(&IncludeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", file.ID).Delete(&ReferenceRecord{}).Error; err != nil {
			return err
		}

		for _, sym := range st.SymbolsIn(path) {
			rec := SymbolRecord{
				FileID:                  file.ID,
				LocalID:                 sym.ID,
				Name:                    sym.Name,
				Kind:                    uint8(sym.Kind),
				RangeStart:              sym.Range.Start,
				RangeEnd:                sym.Range.End,
				DeclaredInScope:         uint8(sym.DeclaredInScope),
				TypeText:                sym.TypeText,
				HasBody:                 sym.HasBody,
				ParamCount:              sym.ParamCount,
				IsForwardDeclaration:    sym.IsForwardDeclaration,
				ParentSymbol:            sym.ParentSymbol,
				StatementsBeforeInBlock: sym.StatementsBeforeInBlock,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		for _, inc := range st.IncludesIn(path) {
			rec := IncludeRecord{
				FileID:         file.ID,
				TargetPathText: inc.TargetPathText,
				ResolvedPath:   string(inc.ResolvedPath),
				Angled:         inc.Angled,
				RangeStart:     inc.Range.Start,
				RangeEnd:       inc.Range.End,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		for _, ref := range st.ReferencesFrom(path) {
			rec := ReferenceRecord{
				FileID:         file.ID,
				RangeStart:     ref.Range.Start,
				RangeEnd:       ref.Range.End,
				ReferencedName: ref.ReferencedName,
				Context:        uint8(ref.Context),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SyncEdges replaces the whole visibility-edge table; edges span files,
// so unlike symbols/includes/references they aren't scoped to one file's
// transaction.
func (d *DB) SyncEdges(edges []types.VisibilityEdge) error {
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&VisibilityEdgeRecord{}).Error; err != nil {
			return err
		}
		idFor := map[types.FileID]uint{}
		resolve := func(f types.FileID) (uint, error) {
			if id, ok := idFor[f]; ok {
				return id, nil
			}
			var rec FileRecord
			if err := tx.Where("path = ?", string(f)).First(&rec).Error; err != nil {
				return 0, err
			}
			idFor[f] = rec.ID
			return rec.ID, nil
		}
		for _, e := range edges {
			fromID, err := resolve(e.From)
			if err != nil {
				continue // file not yet synced; edge recorded on its next sync
			}
			toID, err := resolve(e.To)
			if err != nil {
				continue
			}
			if err := tx.Create(&VisibilityEdgeRecord{FromFileID: fromID, ToFileID: toID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordIssues appends one IssueRecord per issue, timestamped now, for
// later diffing by callers that want "new since last run" semantics.
func (d *DB) RecordIssues(path types.FileID, issues []types.Issue) error {
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		var file FileRecord
		if err := tx.Where("path = ?", string(path)).First(&file).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, iss := range issues {
			rec := IssueRecord{
				FileID:      file.ID,
				RuleID:      iss.RuleID,
				Severity:    uint8(iss.Severity),
				RangeStart:  iss.PrimaryRange.Start,
				RangeEnd:    iss.PrimaryRange.End,
				Message:     iss.Message,
				AutoFixable: iss.AutoFixable,
				RecordedAt:  now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FileHash returns the last-recorded content hash for path, and whether
// a record exists at all, so a caller can skip re-analyzing an
// unchanged file.
func (d *DB) FileHash(path types.FileID) (string, bool) {
	var rec FileRecord
	if err := d.gorm.Where("path = ?", string(path)).First(&rec).Error; err != nil {
		return "", false
	}
	return rec.Hash, true
}

// Close releases the underlying sqlite connection.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
