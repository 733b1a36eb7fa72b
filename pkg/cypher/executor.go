package cypher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// Store is the subset of the graph store the executor walks. Execution
// errors (a store I/O failure mid-walk) are returned to the caller; per
// spec, the hybrid engine treats any such error as "proceed with
// vector-only retrieval" rather than propagating it.
type Store interface {
	ListByType(t graphtypes.EntityType) ([]*graphtypes.Entity, error)
	Neighbors(entityID string, depth int, relType string) ([]*graphtypes.Entity, error)
}

// Row binds each pattern variable in a matched path to the entity it
// resolved to.
type Row map[string]*graphtypes.Entity

// Result is the projected output of Execute.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// EntityIDs collects the id of every *graphtypes.Entity value appearing
// anywhere in r's projected rows, deduplicated, in first-seen order — the
// "ids of returned entity-shaped records" spec's hybrid engine step 2 wants.
func (r *Result) EntityIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range r.Rows {
		for _, v := range row {
			if e, ok := v.(*graphtypes.Entity); ok {
				if !seen[e.ID] {
					seen[e.ID] = true
					ids = append(ids, e.ID)
				}
			}
		}
	}
	return ids
}

// Execute runs a parsed Query against s. A nil error with an empty Result is
// returned when no path matches; execution failures (a Store call erroring)
// are returned so the caller can decide whether to fall back.
func Execute(q *Query, s Store) (*Result, error) {
	var rows []Row
	for i, clause := range q.Matches {
		clauseRows, err := executeClause(clause, s)
		if err != nil {
			return nil, fmt.Errorf("cypher: execute MATCH %d: %w", i, err)
		}
		if i == 0 {
			rows = clauseRows
			continue
		}
		rows = crossJoin(rows, clauseRows)
	}

	if q.Where != nil {
		filtered := rows[:0]
		for _, row := range rows {
			if evalExpr(q.Where, row) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if len(q.OrderBy) > 0 {
		sortRows(rows, q.OrderBy)
	}

	if q.Limit >= 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return project(rows, q.Returns), nil
}

func executeClause(mc MatchClause, s Store) ([]Row, error) {
	if len(mc.Nodes) == 0 {
		return nil, nil
	}
	entities, err := candidatesForNode(mc.Nodes[0], s)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(entities))
	for _, e := range entities {
		row := Row{}
		if mc.Nodes[0].Var != "" {
			row[mc.Nodes[0].Var] = e
		}
		rows = append(rows, row)
	}

	for i, rel := range mc.Rels {
		nextNode := mc.Nodes[i+1]
		var nextRows []Row
		for _, row := range rows {
			anchor := mc.Nodes[i].Var
			var anchorEntity *graphtypes.Entity
			if anchor != "" {
				anchorEntity = row[anchor]
			}
			if anchorEntity == nil {
				continue
			}
			depth := rel.MaxHops
			if depth <= 0 {
				depth = 1
			}
			neighbors, err := s.Neighbors(anchorEntity.ID, depth, rel.Type)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				if !matchesNode(n, nextNode) {
					continue
				}
				merged := cloneRow(row)
				if nextNode.Var != "" {
					merged[nextNode.Var] = n
				}
				nextRows = append(nextRows, merged)
			}
		}
		rows = nextRows
	}
	return rows, nil
}

func candidatesForNode(n NodePattern, s Store) ([]*graphtypes.Entity, error) {
	if n.Label == "" {
		return nil, fmt.Errorf("node pattern with no label is not supported by this subset")
	}
	entities, err := s.ListByType(graphtypes.EntityType(strings.ToUpper(n.Label)))
	if err != nil {
		return nil, err
	}
	out := entities[:0]
	for _, e := range entities {
		if matchesNode(e, n) {
			out = append(out, e)
		}
	}
	return out, nil
}

// matchesNode applies a node pattern's label and property filters (name/type
// only, per spec §4.8) against a candidate entity.
func matchesNode(e *graphtypes.Entity, n NodePattern) bool {
	if n.Label != "" && !strings.EqualFold(string(e.Type), n.Label) {
		return false
	}
	for k, lit := range n.Props {
		switch strings.ToLower(k) {
		case "name":
			if !strings.EqualFold(e.Name, lit.String) {
				return false
			}
		case "type":
			if !strings.EqualFold(string(e.Type), lit.String) {
				return false
			}
		}
	}
	return true
}

func cloneRow(r Row) Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// crossJoin combines every row of a with every row of b, merging bindings;
// a row sharing a variable across both sides is kept only if both sides
// bind it to the same entity id.
func crossJoin(a, b []Row) []Row {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var out []Row
	for _, ra := range a {
		for _, rb := range b {
			merged := cloneRow(ra)
			ok := true
			for k, v := range rb {
				if existing, has := merged[k]; has && existing.ID != v.ID {
					ok = false
					break
				}
				merged[k] = v
			}
			if ok {
				out = append(out, merged)
			}
		}
	}
	return out
}

func propValue(row Row, v, prop string) (any, bool) {
	e, ok := row[v]
	if !ok || e == nil {
		return nil, false
	}
	switch strings.ToLower(prop) {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "type":
		return string(e.Type), true
	case "description":
		return e.Description, true
	case "last_modified":
		return float64(e.LastModified), true
	case "created_at":
		return float64(e.CreatedAt), true
	default:
		if val, ok := e.Attributes[prop]; ok {
			return val, true
		}
		return nil, false
	}
}

func evalExpr(expr Expr, row Row) bool {
	switch ex := expr.(type) {
	case AndExpr:
		return evalExpr(ex.Left, row) && evalExpr(ex.Right, row)
	case OrExpr:
		return evalExpr(ex.Left, row) || evalExpr(ex.Right, row)
	case NotExpr:
		return !evalExpr(ex.Inner, row)
	case Comparison:
		return evalComparison(ex, row)
	default:
		return false
	}
}

func evalComparison(c Comparison, row Row) bool {
	val, ok := propValue(row, c.Var, c.Prop)
	if !ok {
		return false
	}
	if c.Op == "IN" {
		for _, lit := range c.Values {
			if compareEqual(val, lit) {
				return true
			}
		}
		return false
	}

	str, isStr := val.(string)
	switch c.Op {
	case "=":
		return compareEqual(val, c.Value)
	case "<>":
		return !compareEqual(val, c.Value)
	case "CONTAINS":
		return isStr && strings.Contains(str, c.Value.String)
	case "STARTS WITH":
		return isStr && strings.HasPrefix(str, c.Value.String)
	case "ENDS WITH":
		return isStr && strings.HasSuffix(str, c.Value.String)
	case "<", ">", "<=", ">=":
		return compareOrdered(val, c.Op, c.Value)
	}
	return false
}

func compareEqual(val any, lit Literal) bool {
	switch v := val.(type) {
	case string:
		return lit.Kind == LiteralString && strings.EqualFold(v, lit.String)
	case float64:
		return lit.Kind == LiteralNumber && v == lit.Number
	case bool:
		return lit.Kind == LiteralBool && v == lit.Bool
	}
	return false
}

func compareOrdered(val any, op string, lit Literal) bool {
	var a, b float64
	switch v := val.(type) {
	case float64:
		if lit.Kind != LiteralNumber {
			return false
		}
		a, b = v, lit.Number
	case string:
		if lit.Kind != LiteralString {
			return false
		}
		return compareStrings(v, op, lit.String)
	default:
		return false
	}
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func compareStrings(a, op, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func sortRows(rows []Row, order []OrderItem) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			vi, oki := propValue(rows[i], o.Var, o.Prop)
			vj, okj := propValue(rows[j], o.Var, o.Prop)
			if !oki || !okj {
				continue
			}
			cmp := compareAny(vi, vj)
			if cmp == 0 {
				continue
			}
			if o.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareAny(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func project(rows []Row, items []ReturnItem) *Result {
	res := &Result{}
	if len(items) == 1 && items[0].Star {
		for _, row := range rows {
			out := make(map[string]any, len(row))
			for k, v := range row {
				out[k] = v
			}
			res.Rows = append(res.Rows, out)
		}
		return res
	}

	for _, it := range items {
		col := it.Var
		if it.Prop != "" {
			col = it.Var + "." + it.Prop
		}
		if it.Alias != "" {
			col = it.Alias
		}
		res.Columns = append(res.Columns, col)
	}

	for _, row := range rows {
		out := make(map[string]any, len(items))
		for _, it := range items {
			col := it.Var
			if it.Prop != "" {
				col = it.Var + "." + it.Prop
			}
			if it.Alias != "" {
				col = it.Alias
			}
			if it.Prop == "" {
				out[col] = row[it.Var]
				continue
			}
			if v, ok := propValue(row, it.Var, it.Prop); ok {
				out[col] = v
			}
		}
		res.Rows = append(res.Rows, out)
	}
	return res
}
