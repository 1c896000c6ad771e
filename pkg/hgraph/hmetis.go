package hgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// hMetis weight flags: bit 0 set means edges carry weights, bit 1 set
// means nodes carry weights. fmt values 0, 1, 10, 11 follow the hMetis
// convention of reading the flag digits as a two-character string.
const (
	fmtNone        = "0"
	fmtEdgeWeights = "1"
	fmtNodeWeights = "10"
	fmtBoth        = "11"
)

// ReadHMetisFile loads a hypergraph from an hMetis-format file: a header
// line "|E| |V| [fmt]" followed by one line per edge listing its pins
// (1-based node ids), optionally prefixed by the edge weight.
func ReadHMetisFile(path string) (*StaticHypergraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hgraph: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadHMetis(f)
}

// ReadHMetis parses the hMetis format from an arbitrary reader.
func ReadHMetis(r io.Reader) (*StaticHypergraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	header, ok := nextNonEmptyLine(scanner)
	if !ok {
		return nil, fmt.Errorf("hgraph: empty hMetis file")
	}
	headerFields := strings.Fields(header)
	if len(headerFields) < 2 {
		return nil, fmt.Errorf("hgraph: malformed header %q", header)
	}
	numEdges, err := strconv.Atoi(headerFields[0])
	if err != nil {
		return nil, fmt.Errorf("hgraph: bad edge count in header: %w", err)
	}
	numNodes, err := strconv.Atoi(headerFields[1])
	if err != nil {
		return nil, fmt.Errorf("hgraph: bad node count in header: %w", err)
	}
	flag := fmtNone
	if len(headerFields) >= 3 {
		flag = headerFields[2]
	}
	hasEdgeWeights := flag == fmtEdgeWeights || flag == fmtBoth
	hasNodeWeights := flag == fmtNodeWeights || flag == fmtBoth

	edges := make([][]NodeID, 0, numEdges)
	edgeWeights := make([]int64, 0, numEdges)
	for i := 0; i < numEdges; i++ {
		line, ok := nextNonEmptyLine(scanner)
		if !ok {
			return nil, fmt.Errorf("hgraph: expected %d edge lines, found %d", numEdges, i)
		}
		fields := strings.Fields(line)
		weight := int64(1)
		pinStart := 0
		if hasEdgeWeights {
			if len(fields) == 0 {
				return nil, fmt.Errorf("hgraph: edge %d missing weight field", i)
			}
			w, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("hgraph: edge %d bad weight: %w", i, err)
			}
			weight = w
			pinStart = 1
		}
		pins := make([]NodeID, 0, len(fields)-pinStart)
		for _, tok := range fields[pinStart:] {
			id, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("hgraph: edge %d bad pin id %q: %w", i, tok, err)
			}
			pins = append(pins, NodeID(id-1)) // hMetis pins are 1-based
		}
		edges = append(edges, pins)
		edgeWeights = append(edgeWeights, weight)
	}

	var nodeWeights []int64
	if hasNodeWeights {
		nodeWeights = make([]int64, numNodes)
		for v := 0; v < numNodes; v++ {
			line, ok := nextNonEmptyLine(scanner)
			if !ok {
				return nil, fmt.Errorf("hgraph: expected %d node weight lines, found %d", numNodes, v)
			}
			w, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("hgraph: node %d bad weight: %w", v, err)
			}
			nodeWeights[v] = w
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hgraph: scanning hMetis file: %w", err)
	}

	return NewStaticHypergraph(numNodes, edges, nodeWeights, edgeWeights)
}

func nextNonEmptyLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, true
	}
	return "", false
}
