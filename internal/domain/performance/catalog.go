// Package performance implements the pharmacovigilance performance
// self-assessment: a fixed indicator catalog answered yes/no, scored
// and rolled up per assessment.
package performance

// Indicator types. Main indicators weigh 2 points, supplementary 1.
const (
	TypeMain          = "main"
	TypeSupplementary = "supplementary"
)

// Indicator is one catalog entry.
type Indicator struct {
	Code         string `json:"code"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	CategoryName string `json:"category_name"`
	Question     string `json:"question"`
}

// CategoryNames maps category letters to display names.
var CategoryNames = map[string]string{
	"A": "Cơ cấu tổ chức",
	"B": "Cơ sở vật chất và nhân lực",
	"C": "Triển khai các biểu mẫu báo cáo liên quan ADR",
	"D": "Hoạt động giám sát và nghiên cứu liên quan an toàn thuốc",
	"E": "Hoạt động thông tin và truyền thông",
}

func ind(code, typ, category, question string) Indicator {
	return Indicator{Code: code, Type: typ, Category: category, CategoryName: CategoryNames[category], Question: question}
}

// Indicators is the national pharmacovigilance performance indicator
// set (chỉ tiêu đánh giá hiệu quả hoạt động giám sát ADR).
var Indicators = []Indicator{
	// A. Organizational structure.
	ind("2.2", TypeMain, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có văn bản chính thức quy định rõ nhiệm vụ, cơ cấu tổ chức, vai trò, trách nhiệm và phương thức báo cáo của đơn vị giám sát an toàn thuốc không?"),
	ind("2.3", TypeSupplementary, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có quy trình thao tác chuẩn trong kiểm soát chất lượng thuốc không?"),
	ind("2.5", TypeMain, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có bản phân công công việc cho nhân viên y tế chịu trách nhiệm về giám sát ADR không?"),
	ind("2.8", TypeMain, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có quy trình phát hiện và báo cáo ADR không?"),
	ind("2.9", TypeMain, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thành lập và triển khai hoạt động của Hội đồng Thuốc và điều trị không?"),
	ind("2.14", TypeMain, "A", "Cơ sở khám bệnh, chữa bệnh của anh/chị có văn bản về việc phối hợp các đối tác liên quan trong đơn vị để triển khai hoạt động giám sát ADR không?"),

	// B. Facilities and staffing.
	ind("2.1", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có quyết định thành lập đơn vị hay bộ phận chịu trách nhiệm giám sát an toàn thuốc trong đơn vị của mình không?"),
	ind("2.4", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có hệ thống dữ liệu lưu trữ thông tin trả lời câu hỏi về ADR và thông tin an toàn của thuốc không?"),
	ind("2.6", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có nguồn tài chính cho hoạt động giám sát ADR không?"),
	ind("2.7", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có lưu trữ văn bản Hướng dẫn giám sát phản ứng có hại của thuốc và Hướng dẫn Quốc gia về Cảnh giác Dược không?"),
	ind("2.10", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có sẵn các phương tiện công nghệ thông tin để cập nhật và cung cấp thông tin và cảnh báo về thuốc không?"),
	ind("2.11", TypeMain, "B", "Cơ sở khám bệnh, chữa bệnh của anh/chị có các tài liệu tham khảo cơ bản về Thông tin thuốc và Cảnh giác Dược không?"),
	ind("2.13", TypeSupplementary, "B", "Nhân viên y tế tại cơ sở khám bệnh, chữa bệnh của anh/chị đã tham gia tập huấn về giám sát ADR chưa?"),

	// C. Reporting forms.
	ind("3.1", TypeMain, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thu thập và gửi báo cáo tới Trung tâm DI&ADR không?"),
	ind("3.2", TypeSupplementary, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có mẫu báo cáo ADR dành cho người bệnh không?"),
	ind("3.3", TypeMain, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có mẫu báo cáo phản ứng có hại của thuốc (ADR) không?"),
	ind("3.4", TypeMain, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có mẫu báo cáo chất lượng thuốc không?"),
	ind("3.5", TypeMain, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có mẫu báo cáo sai sót liên quan đến sử dụng thuốc không?"),
	ind("3.6", TypeMain, "C", "Cơ sở khám bệnh, chữa bệnh của anh/chị có mẫu báo cáo thất bại điều trị không?"),

	// D. Surveillance and research.
	ind("4.1", TypeMain, "D", "Số lượng báo cáo ADR tự nguyện của cơ sở khám bệnh, chữa bệnh có ≥ 100 báo cáo/1 triệu dân/năm không? (trong đó, dân số tính theo địa phương nơi đặt bệnh viện)"),
	ind("4.3", TypeSupplementary, "D", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện và báo cáo kiểm soát chất lượng thuốc không?"),
	ind("4.4", TypeSupplementary, "D", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện đánh giá khả năng phòng tránh được của ADR hoặc các nghiên cứu phát hiện sai sót liên quan tới sử dụng thuốc không?"),
	ind("4.5", TypeSupplementary, "D", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện nghiên cứu đánh giá sử dụng thuốc không?"),
	ind("4.6", TypeMain, "D", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện giám sát tích cực ADR trong 5 năm trở lại đây hay không?"),
	ind("4.7", TypeMain, "D", "Tỷ lệ số người bệnh được ghi nhận gặp biến cố bất lợi liên quan đến thuốc trên tổng số người bệnh điều trị nội trú tại cơ sở khám bệnh, chữa bệnh của anh/chị có ≥ 1% không?"),

	// E. Information and communication.
	ind("5.1", TypeSupplementary, "E", "Số lượng yêu cầu thông tin về an toàn thuốc đã tiếp nhận và xử lý có ≥ 100 yêu cầu/1 triệu dân/năm không? (trong đó, dân số tính theo địa phương nơi đặt bệnh viện)"),
	ind("5.2", TypeSupplementary, "E", "Cơ sở khám bệnh, chữa bệnh có xuất bản bản tin về an toàn thuốc (bản tin Thông tin thuốc, Cảnh giác Dược, Dược lâm sàng) theo kế hoạch không?"),
	ind("5.3", TypeSupplementary, "E", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện và ban hành Hướng dẫn đấu thầu, chính sách đấu thầu thuốc"),
	ind("5.6", TypeSupplementary, "E", "Cơ sở khám bệnh, chữa bệnh của anh/chị có danh mục và hướng dẫn sử dụng thuốc có nguy cơ cao không?"),
	ind("5.7", TypeSupplementary, "E", "Tỷ lệ truyền tải các cảnh báo an toàn thuốc từ cơ quan quản lý và các vấn đề an toàn thuốc ghi nhận tại cơ sở khám bệnh, chữa bệnh của anh/chị trong năm qua có ≥ 70% không?"),
	ind("5.8", TypeMain, "E", "Khoảng thời gian trễ (tính từ khi xác định được các vấn đề an toàn thuốc cho tới lúc thông tin được truyền tải cho nhân viên y tế) của mỗi vấn đề an toàn thuốc trong số 70% vấn đề an toàn thuốc đã được truyền tải tại cơ sở khám bệnh, chữa bệnh của anh/chị trong 1 năm qua có được thực hiện trong vòng 3 tuần không?"),
	ind("5.9", TypeSupplementary, "E", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện tư vấn cho người bệnh về ADR và vấn đề an toàn thuốc không?"),
	ind("5.10", TypeSupplementary, "E", "Cơ sở khám bệnh, chữa bệnh của anh/chị có thực hiện các hoạt động an toàn thuốc như: truyền thông an toàn thuốc, xây dựng/sửa đổi/cập nhật các hướng dẫn sử dụng thuốc và ra quyết định quản lý nguy cơ trong 1 năm vừa qua không?"),
	ind("5.11", TypeMain, "E", "Tỷ lệ số cuộc họp của Hội đồng Thuốc và điều trị có đề cập đến hoạt động Cảnh giác Dược hoặc giải quyết vấn đề an toàn thuốc trên tổng số cuộc họp của Hội đồng Thuốc và điều trị trong 1 năm qua có ≥ 70% không?"),
}

var indicatorIndex = func() map[string]Indicator {
	m := make(map[string]Indicator, len(Indicators))
	for _, i := range Indicators {
		m[i.Code] = i
	}
	return m
}()

// IndicatorByCode looks up a catalog entry.
func IndicatorByCode(code string) (Indicator, bool) {
	i, ok := indicatorIndex[code]
	return i, ok
}

// MaxScore is the ceiling an indicator can contribute.
func MaxScore(indicatorType string) int {
	if indicatorType == TypeMain {
		return 2
	}
	return 1
}

// CatalogMaxScore is the ceiling of a complete assessment.
func CatalogMaxScore() int {
	total := 0
	for _, i := range Indicators {
		total += MaxScore(i.Type)
	}
	return total
}
